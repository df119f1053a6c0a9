package cli

var (
	verbose bool

	// settings files, shared by server start, replay and the show commands
	tunablesPath string
	actionsPath  string

	// for server start
	watchSettings bool
)
