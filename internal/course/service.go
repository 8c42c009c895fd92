package course

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrTitleRequired  = errors.New("course title is required")
)

type Service interface {
	Create(userID uuid.UUID, dto CreateCourseDTO) (*CourseResponse, error)
	List(userID uuid.UUID) ([]CourseResponse, error)
	Get(id, userID uuid.UUID) (*CourseResponse, error)
	Update(id, userID uuid.UUID, dto UpdateCourseDTO) (*CourseResponse, error)
	Delete(id, userID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(userID uuid.UUID, dto CreateCourseDTO) (*CourseResponse, error) {
	if dto.Title == "" {
		return nil, ErrTitleRequired
	}

	course := Course{
		UserID:      userID,
		Title:       dto.Title,
		Description: dto.Description,
		Color:       dto.Color,
	}

	if err := s.repo.Create(&course); err != nil {
		return nil, err
	}

	return s.toResponse(&course), nil
}

func (s *service) List(userID uuid.UUID) ([]CourseResponse, error) {
	courses, err := s.repo.FindAllByUserID(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, *s.toResponse(&course))
	}
	return responses, nil
}

func (s *service) Get(id, userID uuid.UUID) (*CourseResponse, error) {
	course, err := s.findOwned(id, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(course), nil
}

func (s *service) Update(id, userID uuid.UUID, dto UpdateCourseDTO) (*CourseResponse, error) {
	course, err := s.findOwned(id, userID)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		if *dto.Title == "" {
			return nil, ErrTitleRequired
		}
		course.Title = *dto.Title
	}
	if dto.Description != nil {
		course.Description = *dto.Description
	}
	if dto.Color != nil {
		course.Color = *dto.Color
	}

	if err := s.repo.Update(course); err != nil {
		return nil, err
	}

	return s.toResponse(course), nil
}

func (s *service) Delete(id, userID uuid.UUID) error {
	affected, err := s.repo.Delete(id, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (s *service) findOwned(id, userID uuid.UUID) (*Course, error) {
	course, err := s.repo.FindByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *service) toResponse(course *Course) *CourseResponse {
	return &CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Color:       course.Color,
		UserID:      course.UserID,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}
