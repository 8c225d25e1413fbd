package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

func TestReporterPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	err := diagnostics.NewError(diagnostics.ErrCircularDependency, token.Token{}, "circular dependency detected").
		WithTrace("main.surf:1:1").
		WithChain([]string{"/x/a.surf", "/x/b.surf"}).
		WithHints("Separate dependencies into different files to avoid this issue")
	r.Error(err)

	want := strings.Join([]string{
		"[ERROR] [CircularDependency] circular dependency detected",
		"        at main.surf:1:1",
		"        import chain:",
		"        -> /x/a.surf",
		"         -> /x/b.surf",
		"[HELP]  Separate dependencies into different files to avoid this issue",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestReporterWarningAndCause(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	r.Warning(diagnostics.NewError(diagnostics.WarnNaming, token.Token{}, "'fooBar' is not snake_case"))
	r.Error(diagnostics.Wrap(errors.New("disk full"), diagnostics.ErrInternal, "backend model failed"))
	r.Info("done")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"[WARN]  [NamingStyle] 'fooBar' is not snake_case",
		"[ERROR] [InternalError] backend model failed: disk full",
		"[INFO]  done",
	}, lines)
}

func TestReporterColor(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, true).Info("done")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "done")
}

func TestColorEnabledHonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(nil))
}
