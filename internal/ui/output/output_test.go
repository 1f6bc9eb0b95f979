package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/lander/internal/ui/output"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
}

func TestNewWithProfile_Ascii(t *testing.T) {
	var buf bytes.Buffer
	out := output.NewWithProfile(&buf, termenv.Ascii)

	styled := out.String("plain").Foreground(termenv.ANSIRed).String()
	assert.Equal(t, "plain", styled)
}

func TestNewWithProfile_ANSI(t *testing.T) {
	var buf bytes.Buffer
	out := output.NewWithProfile(&buf, termenv.ANSI)

	styled := out.String("red").Foreground(termenv.ANSIRed).String()
	assert.Contains(t, styled, "\x1b[")
	assert.Contains(t, styled, "red")
}

func TestNew_Nil(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}
