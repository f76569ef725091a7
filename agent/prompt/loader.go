package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/worker.txt
	workerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Supervisor string
	Worker     string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Supervisor: strings.TrimSpace(supervisorRaw),
		Worker:     strings.TrimSpace(workerRaw),
	}
}
