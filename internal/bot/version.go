package bot

// Version is the release version, overridable at build time via ldflags.
var Version = "0.1.0"
