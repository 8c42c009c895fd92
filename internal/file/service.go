package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/luma-lambda/internal/aiusage"
	"github.com/saulo-duarte/luma-lambda/internal/config"
	"github.com/saulo-duarte/luma-lambda/internal/course"
	"github.com/saulo-duarte/luma-lambda/internal/llm"
	"github.com/saulo-duarte/luma-lambda/internal/quota"
	"github.com/saulo-duarte/luma-lambda/internal/storage"
	"github.com/saulo-duarte/luma-lambda/internal/topic"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrFileNotFound     = errors.New("file not found")
	ErrNotPDF           = errors.New("only PDF files are supported")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
	ErrFileProcessing   = errors.New("file is already being processed")
	ErrAIUnavailable    = errors.New("ai provider unavailable")
	ErrExtractionFailed = errors.New("topic extraction failed")
)

// MaxUploadBytes matches the Gemini inline-document cap, since processing
// sends the whole PDF to the model in one request.
const MaxUploadBytes = 20 << 20

const (
	pdfMime = "application/pdf"

	extractionMaxTokens   = 8192
	extractionTemperature = 0.2

	signConcurrency = 8
)

type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, dto UploadDTO) (*FileResponse, error)
	Process(ctx context.Context, id, userID uuid.UUID) (*OutlineResponse, error)
	ListByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]FileResponse, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*FileResponse, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	topics   topic.Repository
	courses  course.Service
	store    storage.Service
	quotas   quota.Service
	provider llm.Provider
	usage    aiusage.Recorder
}

func NewService(
	repo Repository,
	topics topic.Repository,
	courses course.Service,
	store storage.Service,
	quotas quota.Service,
	provider llm.Provider,
	usage aiusage.Recorder,
) Service {
	return &service{
		repo:     repo,
		topics:   topics,
		courses:  courses,
		store:    store,
		quotas:   quotas,
		provider: provider,
		usage:    usage,
	}
}

func (s *service) Upload(ctx context.Context, userID uuid.UUID, dto UploadDTO) (*FileResponse, error) {
	log := config.WithContext(ctx)

	if dto.MimeType != pdfMime {
		return nil, ErrNotPDF
	}
	if dto.Size <= 0 || dto.Size > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if _, err := s.courses.Get(dto.CourseID, userID); err != nil {
		return nil, err
	}

	if err := s.quotas.Consume(ctx, userID, quota.FILE_UPLOADS, 1, "file_upload"); err != nil {
		return nil, err
	}

	f := &CourseFile{
		ID:           uuid.New(),
		CourseID:     dto.CourseID,
		UserID:       userID,
		OriginalName: dto.FileName,
		MimeType:     pdfMime,
		Size:         dto.Size,
		Status:       UPLOADED,
	}
	f.StorageKey = fmt.Sprintf("uploads/%s/%s.pdf", userID, f.ID)

	if err := s.store.Upload(ctx, f.StorageKey, pdfMime, dto.Content); err != nil {
		s.quotas.Refund(ctx, userID, quota.FILE_UPLOADS, 1, "upload_failed")
		log.WithError(err).Error("Failed to store uploaded file")
		return nil, err
	}

	if err := s.repo.Create(f); err != nil {
		s.quotas.Refund(ctx, userID, quota.FILE_UPLOADS, 1, "upload_failed")
		if delErr := s.store.Delete(ctx, f.StorageKey); delErr != nil {
			log.WithError(delErr).Warnf("Failed to remove orphaned object %s", f.StorageKey)
		}
		return nil, err
	}

	log.Infof("Uploaded file %s (%d bytes) to course %s", f.ID, f.Size, f.CourseID)
	resp := toResponse(f)
	return &resp, nil
}

func (s *service) Process(ctx context.Context, id, userID uuid.UUID) (*OutlineResponse, error) {
	log := config.WithContext(ctx)

	f, err := s.repo.FindByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	if f.Status == PROCESSING {
		return nil, ErrFileProcessing
	}
	if f.Status == READY {
		return s.outlineResponse(f.ID, f.PageCount)
	}

	// Outline rows without a READY status mean extraction finished but the
	// status write was lost. Topics are never re-extracted while rows exist.
	count, err := s.topics.CountByFileID(f.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return s.recoverOutline(ctx, f)
	}

	if err := s.quotas.Consume(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "topic_extraction"); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(f.ID, PROCESSING); err != nil {
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "topic_extraction_failed")
		return nil, err
	}

	groups, pageCount, err := s.extract(ctx, f)
	if err == nil {
		err = s.topics.CreateOutline(groups)
		if err != nil {
			log.WithError(err).Error("Failed to persist extracted outline")
		}
	}
	if err != nil {
		s.quotas.Refund(ctx, userID, quota.LEARNING_INTERACTIONS, 1, "topic_extraction_failed")
		if stErr := s.repo.UpdateStatus(f.ID, FAILED); stErr != nil {
			log.WithError(stErr).Warnf("Failed to mark file %s as FAILED", f.ID)
		}
		return nil, err
	}

	if err := s.repo.MarkReady(f.ID, pageCount); err != nil {
		// Rows are persisted, so a later Process call recovers the outline.
		log.WithError(err).Warnf("Failed to mark file %s as READY", f.ID)
		return nil, err
	}

	log.Infof("Extracted %d topic groups from file %s", len(groups), f.ID)
	return s.outlineResponse(f.ID, pageCount)
}

// extract downloads the PDF, sends it inline to the model and validates the
// returned outline. Usage is recorded exactly once per model call.
func (s *service) extract(ctx context.Context, f *CourseFile) ([]topic.TopicGroup, int, error) {
	log := config.WithContext(ctx)

	data, err := s.store.Download(ctx, f.StorageKey)
	if err != nil {
		log.WithError(err).Error("Failed to download file for extraction")
		return nil, 0, fmt.Errorf("download file: %w", err)
	}

	start := time.Now()
	resp, genErr := s.provider.Generate(ctx, llm.Request{
		System:       outlineSystemPrompt,
		User:         buildOutlinePrompt(f.OriginalName),
		Document:     data,
		DocumentMIME: pdfMime,
		MaxTokens:    extractionMaxTokens,
		Temperature:  extractionTemperature,
	})
	duration := time.Since(start)

	if genErr != nil {
		s.recordUsage(ctx, f.UserID, nil, genErr, duration)
		log.WithError(genErr).Error("Topic extraction call failed")
		return nil, 0, ErrAIUnavailable
	}

	groups, pageCount, parseErr := parseOutline(resp.Content, f.ID)
	s.recordUsage(ctx, f.UserID, resp, parseErr, duration)
	if parseErr != nil {
		log.WithError(parseErr).Error("Model returned an invalid outline")
		return nil, 0, ErrExtractionFailed
	}

	return groups, pageCount, nil
}

func (s *service) recordUsage(ctx context.Context, userID uuid.UUID, resp *llm.Response, err error, d time.Duration) {
	entry := aiusage.Entry{
		UserID:   userID,
		Purpose:  aiusage.TOPIC_EXTRACTION,
		Model:    s.provider.ModelID(),
		Err:      err,
		Duration: d,
	}
	if resp != nil {
		entry.Model = resp.Model
		entry.Usage = resp.Usage
	}
	s.usage.Record(ctx, entry)
}

// recoverOutline repairs a file whose outline rows exist but whose status
// write was lost.
func (s *service) recoverOutline(ctx context.Context, f *CourseFile) (*OutlineResponse, error) {
	log := config.WithContext(ctx)

	groups, err := s.topics.FindByFileID(f.ID)
	if err != nil {
		return nil, err
	}
	pageCount := 0
	for _, g := range groups {
		if g.PageEnd > pageCount {
			pageCount = g.PageEnd
		}
	}
	if err := s.repo.MarkReady(f.ID, pageCount); err != nil {
		return nil, err
	}

	log.Infof("Recovered outline for file %s (%d groups)", f.ID, len(groups))
	return &OutlineResponse{FileID: f.ID, Status: READY, PageCount: pageCount, TopicGroups: groups}, nil
}

func (s *service) outlineResponse(fileID uuid.UUID, pageCount int) (*OutlineResponse, error) {
	groups, err := s.topics.FindByFileID(fileID)
	if err != nil {
		return nil, err
	}
	return &OutlineResponse{FileID: fileID, Status: READY, PageCount: pageCount, TopicGroups: groups}, nil
}

func (s *service) ListByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]FileResponse, error) {
	log := config.WithContext(ctx)

	if _, err := s.courses.Get(courseID, userID); err != nil {
		return nil, err
	}
	files, err := s.repo.FindByCourse(courseID, userID)
	if err != nil {
		return nil, err
	}

	// Signing is network-bound, so URLs are computed concurrently. A signing
	// failure degrades that file to an empty URL instead of failing the list.
	responses := make([]FileResponse, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i := range files {
		g.Go(func() error {
			resp := toResponse(&files[i])
			url, err := s.store.SignedURL(files[i].StorageKey)
			if err != nil {
				log.WithError(err).Warnf("Failed to sign URL for file %s", files[i].ID)
			} else {
				resp.URL = url
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*FileResponse, error) {
	log := config.WithContext(ctx)

	f, err := s.repo.FindByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	resp := toResponse(f)
	if url, err := s.store.SignedURL(f.StorageKey); err != nil {
		log.WithError(err).Warnf("Failed to sign URL for file %s", f.ID)
	} else {
		resp.URL = url
	}
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := config.WithContext(ctx)

	f, err := s.repo.FindByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	rows, err := s.repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	// The row (and its topics, via FK cascade) is gone; the object delete is
	// best-effort.
	if err := s.store.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.WithError(err).Warnf("Failed to delete object %s", f.StorageKey)
	}
	return nil
}

type outlinePayload struct {
	TopicGroups []struct {
		Title     string `json:"title"`
		Type      string `json:"type"`
		PageStart int    `json:"page_start"`
		PageEnd   int    `json:"page_end"`
		SubTopics []struct {
			Title   string `json:"title"`
			Summary string `json:"summary"`
		} `json:"sub_topics"`
	} `json:"topic_groups"`
}

func parseOutline(content string, fileID uuid.UUID) ([]topic.TopicGroup, int, error) {
	var payload outlinePayload
	if err := json.Unmarshal([]byte(llm.StripFences(content)), &payload); err != nil {
		return nil, 0, fmt.Errorf("decode outline: %w", err)
	}
	if len(payload.TopicGroups) == 0 {
		return nil, 0, errors.New("outline has no topic groups")
	}

	groups := make([]topic.TopicGroup, 0, len(payload.TopicGroups))
	pageCount := 0
	for i, g := range payload.TopicGroups {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			return nil, 0, fmt.Errorf("group %d has an empty title", i)
		}
		groupType := topic.TopicType(strings.ToUpper(strings.TrimSpace(g.Type)))
		if !groupType.IsValid() {
			return nil, 0, fmt.Errorf("group %d has invalid type %q", i, g.Type)
		}
		if len(g.SubTopics) == 0 {
			return nil, 0, fmt.Errorf("group %d has no subtopics", i)
		}

		subs := make([]topic.SubTopic, 0, len(g.SubTopics))
		for j, sub := range g.SubTopics {
			subTitle := strings.TrimSpace(sub.Title)
			if subTitle == "" {
				return nil, 0, fmt.Errorf("group %d subtopic %d has an empty title", i, j)
			}
			subs = append(subs, topic.SubTopic{
				OrderIndex: j,
				Title:      subTitle,
				Summary:    strings.TrimSpace(sub.Summary),
			})
		}

		if g.PageEnd > pageCount {
			pageCount = g.PageEnd
		}
		groups = append(groups, topic.TopicGroup{
			FileID:     fileID,
			OrderIndex: i,
			Title:      title,
			Type:       groupType,
			PageStart:  g.PageStart,
			PageEnd:    g.PageEnd,
			SubTopics:  subs,
		})
	}
	return groups, pageCount, nil
}
