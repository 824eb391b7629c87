package integration_tests

import (
	"context"
	"io"
	"testing"

	"github.com/specialistvlad/stevedore/internal/app"
	"github.com/specialistvlad/stevedore/internal/hcl_adapter"
	"github.com/specialistvlad/stevedore/internal/localsession"
	"github.com/specialistvlad/stevedore/internal/runtime"
	"github.com/specialistvlad/stevedore/internal/runtime/runtimetest"
	"github.com/specialistvlad/stevedore/internal/testutil"
)

// result captures everything a test may want to assert on after a run.
type result struct {
	ExitCode int
	Err      error
	Output   string
	Client   *runtimetest.Client
}

// runIntegrationTest loads the given HCL files with the real loader and runs
// the configured task against an in-memory container runtime.
func runIntegrationTest(t *testing.T, files map[string]string, appConfig app.Config, client *runtimetest.Client) result {
	t.Helper()

	dir := testutil.WriteFiles(t, files)
	out := &testutil.SafeBuffer{}

	appConfig.ConfigPath = dir
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"
	cfg, err := app.NewConfig(appConfig)
	if err != nil {
		t.Fatalf("invalid app config: %v", err)
	}

	factory := &localsession.SessionFactory{
		Console: out,
		Stdout:  out,
		Stderr:  out,
		NewClient: func() (runtime.Client, io.Closer, error) {
			return client, nil, nil
		},
	}
	a := app.NewApp(out, cfg, hcl_adapter.NewLoader(), app.WithSessionFactory(factory))

	exitCode, err := a.Run(context.Background())
	return result{ExitCode: exitCode, Err: err, Output: out.String(), Client: client}
}
