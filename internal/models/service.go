package models

// ServiceDetail is the externally visible view of one registered service.
type ServiceDetail struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Description string            `json:"description"`
	Link        string            `json:"link,omitempty"`
	RequireSdr  bool              `json:"requireSdr"`
	SelectedSdr string            `json:"selectedSdr,omitempty"`
	Autostart   bool              `json:"autostart"`
	Status      ServiceStatus     `json:"status"`
	Params      map[string]string `json:"params,omitempty"`
	Backend     map[string]string `json:"backend,omitempty"`
	Process     *ProcessDetail    `json:"process,omitempty"`
}

// AssignRequest binds (or with an empty serial, unbinds) an SDR to a service.
type AssignRequest struct {
	Service string `json:"service" binding:"required"`
	Serial  string `json:"serial"`
}

// ParamRequest overrides one command placeholder of a child-process service.
type ParamRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

type Link struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// Action is a named host command offered by the keeper, e.g. shutdown.
type Action struct {
	Name string   `json:"name"`
	Text string   `json:"text"`
	Argv []string `json:"argv"`
}
