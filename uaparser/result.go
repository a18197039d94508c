package uaparser

type Browser struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Major   string `json:"major"`
}

func newBrowser(rec Record) *Browser {
	return &Browser{
		Name:    rec[FieldName],
		Version: rec[FieldVersion],
		Major:   Major(rec[FieldVersion]),
	}
}

type Engine struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func newEngine(rec Record) *Engine {
	return &Engine{Name: rec[FieldName], Version: rec[FieldVersion]}
}

type OS struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func newOS(rec Record) *OS {
	return &OS{Name: rec[FieldName], Version: rec[FieldVersion]}
}

type CPU struct {
	Architecture string `json:"architecture"`
}

func newCPU(rec Record) *CPU {
	return &CPU{Architecture: rec[FieldArchitecture]}
}

// Result is the combined snapshot of every category evaluated under the
// parser's mode. Categories outside the mode are nil.
type Result struct {
	UA      string   `json:"ua"`
	Browser *Browser `json:"browser,omitempty"`
	Engine  *Engine  `json:"engine,omitempty"`
	OS      *OS      `json:"os,omitempty"`
	Device  *Device  `json:"device,omitempty"`
	CPU     *CPU     `json:"cpu,omitempty"`
}
