package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/internal/session"
	"github.com/sangkips/ecs-receipts/internal/wizard"
)

// ReceiptGateway saves wizard receipts in process, as the given actor.
type ReceiptGateway struct {
	receipts *ReceiptService
	actor    Actor
}

func NewReceiptGateway(receipts *ReceiptService, actor Actor) *ReceiptGateway {
	return &ReceiptGateway{receipts: receipts, actor: actor}
}

// CreateReceipt implements wizard.Gateway.
func (g *ReceiptGateway) CreateReceipt(ctx context.Context, rec receipt.Record) (string, error) {
	r, err := g.receipts.Create(ctx, g.actor, rec)
	if err != nil {
		return "", err
	}
	return r.ID.String(), nil
}

// ActorFromSession maps a session user back to a service actor.
func ActorFromSession(u *session.User) Actor {
	if u == nil {
		return Actor{}
	}
	id, _ := uuid.Parse(u.ID)
	a := Actor{UserID: id, EmpCode: u.EmpCode}
	if u.Role != "" {
		a.Roles = []string{u.Role}
	}
	return a
}

// UserLoader resolves the signed-in user for a new wizard.
type UserLoader interface {
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}

// WizardService hosts one receipt wizard per signed-in employee.
type WizardService struct {
	registry *wizard.Registry
	users    UserLoader
}

// WizardDeps are the collaborators every wizard is built with.
type WizardDeps struct {
	Directory wizard.Directory
	Receipts  *ReceiptService
	PDF       *preview.PDFRenderer
	Store     preview.Store
	Debounce  time.Duration
	IdleTTL   time.Duration
	Users     UserLoader
}

// NewWizardService creates a new wizard service
func NewWizardService(deps WizardDeps) *WizardService {
	build := func(sess session.Session) *wizard.Entry {
		regen := preview.NewRegenerator(
			preview.PDFRenderFunc(deps.PDF),
			deps.Store,
			preview.WithDelay(deps.Debounce),
			preview.WithAssets(deps.PDF.Ready),
		)
		gw := NewReceiptGateway(deps.Receipts, ActorFromSession(sess.CurrentUser()))
		m := wizard.New(deps.Directory, sess, gw, wizard.OnRecordChange(regen.Apply))
		return &wizard.Entry{Machine: m, Preview: regen}
	}
	return &WizardService{registry: wizard.NewRegistry(deps.IdleTTL, build), users: deps.Users}
}

// Entry returns the caller's wizard, starting one pre-filled with their
// profile if needed.
func (s *WizardService) Entry(ctx context.Context, actor Actor, token string) (*wizard.Entry, error) {
	if e, ok := s.registry.Lookup(actor.UserID.String()); ok {
		return e, nil
	}
	user, err := s.users.Me(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.registry.Get(SessionUser(user), token), nil
}

// Discard drops the caller's wizard and its preview.
func (s *WizardService) Discard(userID string) {
	s.registry.Drop(userID)
}

// Evict drops idle wizards; run periodically.
func (s *WizardService) Evict() int {
	return s.registry.Evict()
}

// Active reports how many wizards are open.
func (s *WizardService) Active() int {
	return s.registry.Len()
}
