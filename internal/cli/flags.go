package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
	Driver  string `long:"driver" description:"SQLite driver: sqlite3 (cgo) or sqlite (pure Go); overrides storage.driver" choice:"sqlite3" choice:"sqlite"`
}

// artifactArgs is the positional list of artifact paths.
type artifactArgs struct {
	Paths []string `positional-arg-name:"PATH" required:"1"`
}

// artifactArg is a single positional artifact path.
type artifactArg struct {
	Path string `positional-arg-name:"PATH"`
}

// DetectCommand classifies one or more artifacts.
type DetectCommand struct {
	Args artifactArgs `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// RecordsCommand prints one record family of an artifact. The same type
// backs history, downloads, visits and search-terms.
type RecordsCommand struct {
	Limit int         `long:"limit" description:"Maximum records to print (0 = all)" default:"0"`
	Args  artifactArg `positional-args:"yes" required:"yes"`

	kind    recordKind
	globals *GlobalFlags
	version string
}

// ExportCommand writes a report database per artifact.
type ExportCommand struct {
	Out   string       `long:"out" description:"Directory for report databases (required)"`
	Force bool         `long:"force" description:"Replace existing report databases"`
	Args  artifactArgs `positional-args:"yes" required:"yes"`

	globals *GlobalFlags
	version string
}

// ServeCommand starts the HTTP upload and record service.
type ServeCommand struct {
	Host      string `long:"host" description:"Override server.host"`
	Port      int    `long:"port" description:"Override server.port"`
	UploadDir string `long:"upload-dir" description:"Override server.upload_dir"`

	globals *GlobalFlags
	version string
}

// ConfigCommand prints the effective configuration, writing defaults first
// when the config file does not exist.
type ConfigCommand struct {
	globals *GlobalFlags
	version string
}
