package hcl_adapter

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	ProjectName *string          `hcl:"project_name,optional"`
	Containers  []*containerBlock `hcl:"container,block"`
	Tasks       []*taskBlock      `hcl:"task,block"`
}

type containerBlock struct {
	Name             string            `hcl:"name,label"`
	Image            *string           `hcl:"image,optional"`
	Command          *string           `hcl:"command,optional"`
	Entrypoint       *string           `hcl:"entrypoint,optional"`
	WorkingDirectory *string           `hcl:"working_directory,optional"`
	Environment      map[string]string `hcl:"environment,optional"`
	Ports            []string          `hcl:"ports,optional"`
	Volumes          []string          `hcl:"volumes,optional"`
	Dependencies     []string          `hcl:"dependencies,optional"`
}

type taskBlock struct {
	Name          string    `hcl:"name,label"`
	Description   *string   `hcl:"description,optional"`
	Group         *string   `hcl:"group,optional"`
	Dependencies  []string  `hcl:"dependencies,optional"`
	Prerequisites []string  `hcl:"prerequisites,optional"`
	Run           *runBlock `hcl:"run,block"`
}

type runBlock struct {
	Container        string            `hcl:"container"`
	Command          *string           `hcl:"command,optional"`
	Entrypoint       *string           `hcl:"entrypoint,optional"`
	WorkingDirectory *string           `hcl:"working_directory,optional"`
	Environment      map[string]string `hcl:"environment,optional"`
	Ports            []string          `hcl:"ports,optional"`
}
