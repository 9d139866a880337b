package license

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

func TestConsolePrompterReadsCode(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader("a1e27681\n"), &out)

	code, err := p.RequestCode(context.Background(), PromptRequest{Product: "Proj", Version: "1.0.0", Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, "a1e27681", code)
	assert.Contains(t, out.String(), "Proj 1.0.0")
}

func TestConsolePrompterCancellation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty line", input: "\n"},
		{name: "quit shortcut", input: "q\n"},
		{name: "end of input", input: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewConsolePrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			_, err := p.RequestCode(context.Background(), PromptRequest{Attempt: 1})
			assert.ErrorIs(t, err, apperrors.ErrPromptCancelled)
		})
	}
}

func TestConsolePrompterStructLiteral(t *testing.T) {
	var out bytes.Buffer
	p := &ConsolePrompter{In: strings.NewReader("a1e27681\n"), Out: &out}

	code, err := p.RequestCode(context.Background(), PromptRequest{Product: "Proj", Version: "1.0.0", Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, "a1e27681", code)
}

func TestConsolePrompterInvalidNotice(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader("abc\n"), &out)

	_, err := p.RequestCode(context.Background(), PromptRequest{Product: "Proj", Version: "1.0.0", Attempt: 2, LastInvalid: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "not valid")
}

func TestConsolePrompterContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewConsolePrompter(strings.NewReader("abc\n"), &bytes.Buffer{})
	_, err := p.RequestCode(ctx, PromptRequest{Attempt: 1})
	assert.ErrorIs(t, err, apperrors.ErrPromptCancelled)
}
