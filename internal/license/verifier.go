package license

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

// Outcome is the terminal result of one verification flow.
type Outcome int

const (
	// OutcomeAccepted means the version is authorized; proceed.
	OutcomeAccepted Outcome = iota

	// OutcomeRejected means the user declined; the surrounding workflow
	// must halt without raising a fault.
	OutcomeRejected
)

func (o Outcome) String() string {
	if o == OutcomeRejected {
		return "rejected"
	}
	return "accepted"
}

// PromptRequest carries what a prompt implementation needs to ask the
// user for an access code.
type PromptRequest struct {
	Product string
	Version string

	// Attempt counts prompts within this flow, starting at 1.
	Attempt int

	// LastInvalid is set when the previous submission failed
	// verification, so the prompt can say so instead of silently
	// re-asking.
	LastInvalid bool
}

// Prompter is the abstract prompt capability. Implementations yield the
// user-entered string or ErrPromptCancelled; the verification logic
// never knows what UI asked.
type Prompter interface {
	RequestCode(ctx context.Context, req PromptRequest) (string, error)
}

// Verifier composes derivation, the acceptance store and the
// compatibility resolver into the check/prompt/persist flow.
type Verifier struct {
	identity Identity
	secret   string
	format   CodeFormat
	store    *Store
	resolver Resolver
	prompter Prompter
	logger   *slog.Logger
	metrics  *Metrics
}

// NewVerifier builds a verifier over an already-opened store. The
// logger may be nil; slog's default is used then.
func NewVerifier(identity Identity, secret string, format CodeFormat, store *Store, prompter Prompter, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		identity: identity,
		secret:   secret,
		format:   format,
		store:    store,
		resolver: Resolver{Secret: secret, Format: format},
		prompter: prompter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithLogger sets the verifier's logger.
func WithLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) { v.logger = logger }
}

// WithMetrics attaches operation metrics.
func WithMetrics(m *Metrics) VerifierOption {
	return func(v *Verifier) { v.metrics = m }
}

// IsAuthorized reports whether the current version is already covered
// by a stored acceptance, without prompting.
func (v *Verifier) IsAuthorized() bool {
	return v.resolver.IsAuthorized(v.store, v.identity.Name, v.identity.Version)
}

// EnsureAccepted runs the verification state machine for one session:
// already authorized -> Accepted; otherwise prompt until a valid code,
// a cancellation, or a context cancellation. An invalid submission
// mutates nothing and re-prompts; there is no attempt cap, the flow is
// bounded only by the user. A valid code is persisted write-through,
// with the flat fallback file standing in when the structured save
// fails.
func (v *Verifier) EnsureAccepted(ctx context.Context) (outcome Outcome, err error) {
	start := time.Now()
	name, version := v.identity.Name, v.identity.Version

	ctx, span := startSpan(ctx, "verification", name, version)
	defer func() { endSpan(span, outcome.String(), start, err) }()

	if v.IsAuthorized() {
		v.logAction(ctx, slog.LevelInfo, "authorization_check", "version already authorized")
		v.metrics.RecordCheck(ctx, name, version, true)
		return OutcomeAccepted, nil
	}
	v.metrics.RecordCheck(ctx, name, version, false)

	expected := Expected(v.format, name, version, v.secret)
	lastInvalid := false

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return OutcomeRejected, err
		}

		code, err := v.prompter.RequestCode(ctx, PromptRequest{
			Product:     name,
			Version:     version,
			Attempt:     attempt,
			LastInvalid: lastInvalid,
		})
		if errors.Is(err, apperrors.ErrPromptCancelled) {
			v.logAction(ctx, slog.LevelInfo, "prompt", "verification cancelled by user",
				slog.Int("attempts", attempt))
			v.metrics.RecordOutcome(ctx, name, version, "cancelled", time.Since(start))
			return OutcomeRejected, nil
		}
		if err != nil {
			v.logAction(ctx, slog.LevelError, "prompt", "prompt failed",
				slog.String("error", err.Error()))
			return OutcomeRejected, err
		}

		if !Verify(code, expected) {
			lastInvalid = true
			v.logAction(ctx, slog.LevelWarn, "code_verification", "invalid access code entered",
				slog.Int("attempt", attempt),
				slog.String("code_masked", maskCode(code)))
			v.metrics.RecordInvalidCode(ctx, name, version)
			continue
		}

		v.persist(ctx, ConfigKey(name, version), expected)
		v.logAction(ctx, slog.LevelInfo, "code_verification", "access code accepted",
			slog.Int("attempts", attempt))
		v.metrics.RecordOutcome(ctx, name, version, "accepted", time.Since(start))
		return OutcomeAccepted, nil
	}
}

// Accept verifies a single submitted code and persists it on success.
// Non-interactive counterpart of EnsureAccepted for callers that collect
// the code themselves (the status API). Invalid codes mutate nothing.
func (v *Verifier) Accept(ctx context.Context, code string) (err error) {
	start := time.Now()
	name, version := v.identity.Name, v.identity.Version
	expected := Expected(v.format, name, version, v.secret)

	ctx, span := startSpan(ctx, "activation", name, version)
	defer func() {
		outcome := "accepted"
		if err != nil {
			outcome = "rejected"
		}
		endSpan(span, outcome, start, err)
	}()

	if !Verify(code, expected) {
		v.logAction(ctx, slog.LevelWarn, "code_verification", "invalid access code submitted",
			slog.String("code_masked", maskCode(code)))
		v.metrics.RecordInvalidCode(ctx, name, version)
		return apperrors.ErrInvalidAccessCode
	}

	v.persist(ctx, ConfigKey(name, version), expected)
	v.logAction(ctx, slog.LevelInfo, "code_verification", "access code accepted")
	v.metrics.RecordOutcome(ctx, name, version, "accepted", 0)
	return nil
}

// Identity returns what this verifier gates.
func (v *Verifier) Identity() Identity {
	return v.identity
}

// persist records the acceptance write-through. The canonical derived
// code is stored, not the raw user input, so the record round-trips
// through later verification regardless of how the code was typed.
func (v *Verifier) persist(ctx context.Context, key, code string) {
	v.store.Set(key, code)
	if err := v.store.Save(); err != nil {
		v.logAction(ctx, slog.LevelWarn, "persistence", "structured save failed, writing flat fallback",
			slog.String("error", err.Error()),
			slog.String("store_path", v.store.Path()))
		if ferr := v.store.WriteFallback(key, code); ferr != nil {
			v.logAction(ctx, slog.LevelError, "persistence", "fallback write failed, acceptance not persisted",
				slog.String("error", ferr.Error()))
		}
		return
	}
}
