package rasterize

import "encoding/json"

const (
	OutputName = "resume.png"
	OutputType = "image/png"
)

// File is the encoded snapshot of the first page.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the outcome of one conversion. File is nil on failure, with Err
// and Stage recording where the pipeline stopped.
type Result struct {
	File  *File
	Err   error
	Stage Stage
}

// OK reports whether the conversion produced an image.
func (r Result) OK() bool {
	return r.File != nil
}

type fileJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// MarshalJSON renders {"file": null} on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		File *fileJSON `json:"file"`
	}{}
	if r.File != nil {
		out.File = &fileJSON{Name: r.File.Name, Type: r.File.ContentType, Size: len(r.File.Data)}
	}
	return json.Marshal(out)
}
