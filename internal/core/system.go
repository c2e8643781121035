package core

import (
	"fmt"

	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/toolshack/internal/config"
)

// SystemImpl is the default System wiring. ModelFactory rebuilds the model
// client when API settings change at runtime (the /set command path).
type SystemImpl struct {
	Store        sessions.SessionStore
	Tools        *tools.ToolRegistry
	Model        Model
	Reporter     Reporter
	ModelFactory func(config.APIConfig) (Model, error)
}

var _ System = (*SystemImpl)(nil)

func (s *SystemImpl) GetToolRegistry() *tools.ToolRegistry {
	return s.Tools
}

func (s *SystemImpl) SetToolRegistry(reg *tools.ToolRegistry) {
	s.Tools = reg
}

func (s *SystemImpl) GetSessionStore() sessions.SessionStore {
	return s.Store
}

func (s *SystemImpl) GetModel() Model {
	return s.Model
}

func (s *SystemImpl) GetReporter() Reporter {
	return s.Reporter
}

func (s *SystemImpl) UpdateModel(api config.APIConfig) error {
	if s.ModelFactory == nil {
		return fmt.Errorf("no model factory configured")
	}
	model, err := s.ModelFactory(api)
	if err != nil {
		return err
	}
	s.Model = model
	return nil
}
