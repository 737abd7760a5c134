package internal

// Tools bundles the external collaborators the pipeline needs. Assets receive
// it by constructor injection; nothing is looked up globally.
type Tools struct {
	Meta  MetadataPort
	Trans TranscodePort
	Sniff TypeSniffer
	Probe Prober
	Log   *Logger
	Cfg   *Config
}

// MetadataPort reads and writes embedded tags on a media file.
type MetadataPort interface {
	// ReadTags returns the file's tags as a flat name -> value map.
	ReadTags(path string) (map[string]string, error)
	// WriteTags applies the given tags to the file in place.
	WriteTags(path string, tags map[string]string) error
}

// TranscodeOpts describes a format conversion. Empty codec fields are
// omitted from the invocation so the tool picks its defaults.
type TranscodeOpts struct {
	AudioCodec string
	VideoCodec string
	Comment    string
}

// TranscodePort converts a media file from one container/codec to another.
type TranscodePort interface {
	Transcode(src, dst string, opts TranscodeOpts) error
}

// TypeSniffer detects the true mime type of a file's content, independent of
// its extension. Zero-byte files are reported as MimeEmpty.
type TypeSniffer interface {
	DetectMime(path string) (string, error)
	// ExtensionFor returns the canonical extension for a mime type,
	// or "" when unknown.
	ExtensionFor(mime string) string
}

// Prober inspects a media container without decoding it.
type Prober interface {
	// Comment returns the container-level comment tag, or "" when absent.
	Comment(path string) (string, error)
}
