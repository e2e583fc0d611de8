package gemini_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/crewforge/llm/gemini"
	"github.com/m-mizutani/gt"
)

func TestNewRequiresProjectAndLocation(t *testing.T) {
	_, err := gemini.New(context.Background(), "", "us-central1")
	gt.Error(t, err)

	_, err = gemini.New(context.Background(), "my-project", "")
	gt.Error(t, err)
}
