package hcl_adapter

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/stevedore/internal/config"
	"github.com/specialistvlad/stevedore/internal/testutil"
)

const projectHCL = `
project_name = "shop"

container "app" {
  image             = "golang:1.24"
  command           = "go run ./cmd/server"
  working_directory = "/code"
  volumes           = ["./:/code"]
  ports             = ["8080:80"]
  dependencies      = ["db"]
  environment = {
    DB_HOST = "db"
    HOME_DIR = env.STEVEDORE_TEST_HOME
  }
}

container "db" {
  image = "postgres:16"
}
`

const tasksHCL = `
task "setup" {
  description = "Prepare things."
  group       = "Setup"
}

task "test" {
  description   = "Run the tests."
  group         = "Test"
  prerequisites = ["setup"]
  run {
    container   = "app"
    command     = "go test './...' -run 'Test Foo'"
    environment = { CI = "true" }
    ports       = ["9090:90/udp"]
  }
}
`

func newTestLoader() *Loader {
	return &Loader{evalCtx: newEvalContext([]string{"STEVEDORE_TEST_HOME=/home/ci", "NOT-VALID=x"})}
}

func TestLoader_LoadsDirectory(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)
	dir := testutil.WriteFiles(t, map[string]string{
		"containers.hcl":    projectHCL,
		"nested/tasks.hcl":  tasksHCL,
		"nested/README.txt": "ignored",
	})

	// --- Act ---
	cfg, err := newTestLoader().Load(ctx, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.ProjectName)
	assert.Equal(t, []string{"setup", "test"}, cfg.SortedTaskNames())

	app := cfg.Containers["app"]
	require.NotNil(t, app)
	assert.Equal(t, "golang:1.24", app.Image)
	assert.Equal(t, []string{"go", "run", "./cmd/server"}, app.Command.Parsed)
	assert.Nil(t, app.Entrypoint)
	assert.Equal(t, "/code", app.WorkingDirectory)
	assert.Equal(t, map[string]string{"DB_HOST": "db", "HOME_DIR": "/home/ci"}, app.Environment)
	assert.Equal(t, []config.PortMapping{{LocalPort: 8080, ContainerPort: 80, Protocol: "tcp"}}, app.Ports)
	assert.Equal(t, []string{"db"}, app.Dependencies)

	setup := cfg.Tasks["setup"]
	assert.Nil(t, setup.Run)
	assert.Equal(t, "Setup", setup.Group)

	test := cfg.Tasks["test"]
	require.NotNil(t, test.Run)
	want := &config.TaskRunConfiguration{
		Container:   "app",
		Command:     &config.Command{Original: "go test './...' -run 'Test Foo'", Parsed: []string{"go", "test", "./...", "-run", "Test Foo"}},
		Environment: map[string]string{"CI": "true"},
		Ports:       []config.PortMapping{{LocalPort: 9090, ContainerPort: 90, Protocol: "udp"}},
	}
	if diff := cmp.Diff(want, test.Run); diff != "" {
		t.Errorf("run configuration mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"setup"}, test.Prerequisites)
}

func TestLoader_DefaultProjectNameIsDirectoryName(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.NewContext(t)
	dir := testutil.WriteFiles(t, map[string]string{"proj/stevedore.hcl": `container "a" { image = "alpine" }`})

	cfg, err := newTestLoader().Load(ctx, filepath.Join(dir, "proj", "stevedore.hcl"))

	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.ProjectName)
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"a.hcl": `container "a" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "missing image",
			files:   map[string]string{"a.hcl": `container "a" {}`},
			wantErr: "the container 'a' must have an image",
		},
		{
			name: "duplicate container across files",
			files: map[string]string{
				"a.hcl": `container "a" { image = "x" }`,
				"b.hcl": `container "a" { image = "y" }`,
			},
			wantErr: "the container 'a' is defined more than once",
		},
		{
			name: "conflicting project names",
			files: map[string]string{
				"a.hcl": `project_name = "one"`,
				"b.hcl": `project_name = "two"`,
			},
			wantErr: "project_name is set to both 'one' and 'two'",
		},
		{
			name:    "invalid port",
			files:   map[string]string{"a.hcl": "container \"a\" {\n  image = \"x\"\n  ports = [\"80\"]\n}\n"},
			wantErr: "the container 'a' has an invalid port",
		},
		{
			name:    "unterminated quote in command",
			files:   map[string]string{"a.hcl": "container \"a\" {\n  image   = \"x\"\n  command = \"echo 'hi\"\n}\n"},
			wantErr: "the container 'a' has an invalid command",
		},
		{
			name:    "unknown environment variable",
			files:   map[string]string{"a.hcl": `container "a" { image = env.DOES_NOT_EXIST }`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "no hcl files",
			files:   map[string]string{"notes.txt": "nothing"},
			wantErr: "no .hcl files found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.NewContext(t)
			dir := testutil.WriteFiles(t, tc.files)

			_, err := newTestLoader().Load(ctx, dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
