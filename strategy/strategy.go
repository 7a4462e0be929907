// Package strategy runs an ordered list of authentication strategies. Each
// strategy either succeeds with a user, fails the request outright, or passes
// so the next strategy can try.
package strategy

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/zap"
)

type Outcome int

const (
	Pass Outcome = iota
	Success
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Fail:
		return "fail"
	default:
		return "pass"
	}
}

const (
	ReasonInvalid         = "invalid"
	ReasonUnauthenticated = "unauthenticated"
)

// Credential is the decoded client-held remember credential.
type Credential struct {
	UserID string
	Token  string
}

type Request struct {
	Login      string
	Password   string
	Remember   *Credential
	RememberMe bool
}

type Result struct {
	Outcome  Outcome
	User     any
	Reason   string
	Strategy string
	// ClearRemember asks the transport to drop the client-held credential.
	ClearRemember bool
	// Issued is set when the client credential must be (re)written: a new
	// token was issued or a remembered record was extended.
	Issued *RememberGrant
}

type RememberGrant struct {
	UserID    string
	Token     string
	ExpiresAt int64
}

func SuccessResult(user any) Result {
	return Result{Outcome: Success, User: user}
}

func FailResult(reason string) Result {
	return Result{Outcome: Fail, Reason: reason}
}

func PassResult() Result {
	return Result{Outcome: Pass}
}

// Strategy is one authentication method. Authenticate returns an error only
// for infrastructure failures; expected rejections are Fail or Pass results.
type Strategy interface {
	Name() string
	Valid(req *Request) bool
	Authenticate(ctx context.Context, req *Request) (Result, error)
}

// Hook runs after a successful authentication and may amend the result.
type Hook func(ctx context.Context, req *Request, result *Result) error

type Pipeline struct {
	strategies []Strategy
	hooks      []Hook
	logger     *logging.Service
}

func NewPipeline(logger *logging.Service, strategies ...Strategy) *Pipeline {
	return &Pipeline{
		strategies: strategies,
		logger:     logger.Named("strategy"),
	}
}

func (p *Pipeline) AfterSuccess(hook Hook) {
	p.hooks = append(p.hooks, hook)
}

func (p *Pipeline) Strategies() []string {
	names := make([]string, 0, len(p.strategies))
	for _, s := range p.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Authenticate tries each valid strategy in order until one succeeds or
// fails. When every strategy passes the request fails as unauthenticated.
func (p *Pipeline) Authenticate(ctx context.Context, req *Request) (Result, error) {
	clearRemember := false

	for _, s := range p.strategies {
		if !s.Valid(req) {
			continue
		}

		result, err := s.Authenticate(ctx, req)
		if err != nil {
			p.logger.Error("strategy aborted authentication",
				zap.String("strategy", s.Name()),
				zap.Error(err))
			return Result{}, fmt.Errorf("%s strategy: %w", s.Name(), err)
		}

		result.Strategy = s.Name()
		clearRemember = clearRemember || result.ClearRemember

		switch result.Outcome {
		case Pass:
			p.logger.Debug("strategy passed", zap.String("strategy", s.Name()))
			continue
		case Fail:
			p.logger.Info("authentication failed",
				zap.String("strategy", s.Name()),
				zap.String("reason", result.Reason))
			result.ClearRemember = clearRemember
			return result, nil
		}

		result.ClearRemember = clearRemember
		for _, hook := range p.hooks {
			if err := hook(ctx, req, &result); err != nil {
				return Result{}, err
			}
		}

		p.logger.Debug("authentication succeeded", zap.String("strategy", s.Name()))
		return result, nil
	}

	return Result{
		Outcome:       Fail,
		Reason:        ReasonUnauthenticated,
		ClearRemember: clearRemember,
	}, nil
}
