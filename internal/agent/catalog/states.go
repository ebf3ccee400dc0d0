package catalog

import (
	"fmt"

	"github.com/Chative-core-poc-v1/salesbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/salesbot/internal/core/error"
)

// States is the raw dialogue table. Cross references are validated when the
// dialogue table is built from it.
type States struct {
	Initial         model.StateID       `yaml:"initial"`
	QuestionIntents []model.Intent      `yaml:"question_intents"`
	States          []model.StateConfig `yaml:"states"`
}

func ParseStates(data []byte) (*States, error) {
	var st States
	if err := decodeStrict(StatesFile, data, &st); err != nil {
		return nil, err
	}

	var problems []error
	if st.Initial == "" {
		problems = append(problems, fmt.Errorf("initial state is not set"))
	}
	if len(st.States) == 0 {
		problems = append(problems, fmt.Errorf("no states declared"))
	}
	for i, s := range st.States {
		if s.ID == "" {
			problems = append(problems, fmt.Errorf("states[%d]: empty id", i))
		}
	}

	if err := errx.WrapConfig(StatesFile, problems...); err != nil {
		return nil, err
	}
	return &st, nil
}
