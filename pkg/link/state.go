package link

import (
	"context"

	"go.uber.org/zap"

	"github.com/aggrecore/core/pkg/effect"
	"github.com/aggrecore/core/pkg/env"
	"github.com/aggrecore/core/pkg/loadable"
)

// ActionLoad requests a fresh pairing code.
type ActionLoad struct{}

// ActionReadData asks the link service whether the displayed code has
// been submitted yet.
type ActionReadData struct{}

// ActionUnload clears both cells.
type ActionUnload struct{}

type internalCodeResult struct {
	value CodeResponse
	err   error
}

type internalDataResult struct {
	requestCode string
	authKey     string
	err         error
}

// State is the pairing flow's two-stage Loadable pair: a code, then the
// auth key that code resolves to once another device submits it.
type State struct {
	Code    loadable.Loadable[CodeResponse]
	AuthKey loadable.Loadable[string]

	client *Client
	env    env.Env
	logger *zap.Logger
}

func New(e env.Env, logger *zap.Logger) *State {
	return &State{client: NewClient(e), env: e, logger: logger}
}

func (s *State) Update(msg effect.Msg) effect.Effects {
	switch m := msg.(type) {
	case ActionLoad:
		return s.load()
	case ActionReadData:
		return s.readData()
	case ActionUnload:
		s.Code = loadable.Loadable[CodeResponse]{}
		s.AuthKey = loadable.Loadable[string]{}
		return effect.None
	case internalCodeResult:
		return s.completeCode(m)
	case internalDataResult:
		return s.completeData(m)
	default:
		return effect.None
	}
}

func (s *State) load() effect.Effects {
	s.Code = loadable.Loading[CodeResponse]()
	s.AuthKey = loadable.Loadable[string]{}
	return effect.Future1(func(ctx context.Context) effect.Msg {
		resp, err := s.client.Create(ctx)
		return internalCodeResult{value: resp, err: err}
	})
}

func (s *State) readData() effect.Effects {
	if s.Code.State != loadable.StateReady {
		return effect.None
	}
	code := s.Code.Value.Code
	s.AuthKey = loadable.Loading[string]()
	return effect.Future1(func(ctx context.Context) effect.Msg {
		key, err := s.client.Read(ctx, code)
		return internalDataResult{requestCode: code, authKey: key, err: err}
	})
}

func (s *State) completeCode(m internalCodeResult) effect.Effects {
	if s.Code.State != loadable.StateLoading {
		return effect.None
	}
	if m.err != nil {
		s.Code = loadable.Err[CodeResponse](m.err)
	} else {
		s.Code = loadable.Ready(m.value)
	}
	s.AuthKey = loadable.Loadable[string]{}
	return effect.None
}

func (s *State) completeData(m internalDataResult) effect.Effects {
	if s.AuthKey.State != loadable.StateLoading {
		return effect.None
	}
	if s.Code.State != loadable.StateReady || s.Code.Value.Code != m.requestCode {
		return effect.None
	}
	if m.err != nil {
		s.AuthKey = loadable.Err[string](m.err)
		return effect.None
	}
	s.AuthKey = loadable.Ready(m.authKey)
	return effect.None
}
