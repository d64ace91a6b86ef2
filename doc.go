// Package nltkdata resolves logical resource names into byte-accessible
// locations and loads their contents.
//
// A resource such as "corpora/brown/ca01" may live on a plain filesystem,
// inside a zip archive, behind a gzip layer, or at a remote URL. The package
// searches an ordered list of roots (directories and zip files), transparently
// falling back to "the enclosing directory is really a zip of the same name",
// and hands back a [PathPointer] that can be opened without the caller knowing
// which case applied.
//
// # Quick Start
//
// Resolve and read a resource:
//
//	ptr, err := nltkdata.Find("corpora/chat80/cities.pl", roots)
//	if err != nil {
//	    return err
//	}
//	r, err := ptr.Open()
//
// Load a resource through a cache, inferring the format from its extension:
//
//	loader := nltkdata.NewLoader(nltkdata.NewResourceCache())
//	v, err := loader.Load("nltk:corpora/toolbox/rotokas.dic")
//
// # Text Decoding
//
// Opened resources can be wrapped in a seekable.Reader, which decodes a
// declared encoding while preserving exact seek/tell semantics against the
// underlying byte stream. See the seekable subpackage.
package nltkdata
