package main

import (
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	_ "github.com/saulo-duarte/luma-lambda/docs"
	"github.com/saulo-duarte/luma-lambda/internal/container"
	"github.com/saulo-duarte/luma-lambda/internal/router"
)

func main() {
	c := container.New()

	r := router.New(router.RouterConfig{
		UserHandler:     c.UserContainer.Handler,
		CourseHandler:   c.CourseContainer.Handler,
		FileHandler:     c.FileContainer.Handler,
		QuotaHandler:    c.QuotaContainer.Handler,
		LearningHandler: c.LearningContainer.Handler,
		AdminHandler:    c.AdminContainer.Handler,
	})

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := httpadapter.NewV2(r)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
