package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/CrowderSoup/taskboard/board"
)

// Invalidator is told which owner's tree changed after every successful
// commit, so the read path can refetch.
type Invalidator interface {
	Invalidate(ownerID string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(string) {}

// Mutator applies actions to the store. Each call to Apply or ApplyAll is one
// transaction: every write it issues commits together or not at all.
type Mutator struct {
	store       *Store
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Mutator)

// WithInvalidator sets the reconciliation trigger called after each commit.
func WithInvalidator(inv Invalidator) Option {
	return func(m *Mutator) { m.invalidator = inv }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mutator) { m.logger = l }
}

// WithClock overrides the source of created_at/updated_at values.
func WithClock(now func() time.Time) Option {
	return func(m *Mutator) { m.now = now }
}

func NewMutator(store *Store, opts ...Option) *Mutator {
	m := &Mutator{
		store:       store,
		invalidator: nopInvalidator{},
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply runs a single action for actor. Failures are *board.MutationError.
func (m *Mutator) Apply(ctx context.Context, actor string, a board.Action) error {
	return m.run(ctx, actor, []board.Action{a}, false)
}

// ApplyAll runs actions in order inside one transaction. If any action fails
// nothing is persisted and the returned error names the failing position.
// Actions are not merged: a later rename of the same entity simply wins.
func (m *Mutator) ApplyAll(ctx context.Context, actor string, actions []board.Action) error {
	if len(actions) == 0 {
		return nil
	}
	return m.run(ctx, actor, actions, true)
}

func (m *Mutator) run(ctx context.Context, actor string, actions []board.Action, batch bool) error {
	if actor == "" {
		return board.Failf(board.CodeUnauthorized, "missing actor")
	}

	// A started transaction runs to commit or rollback; the caller going away
	// does not abort it halfway.
	ctx = context.WithoutCancel(ctx)

	tx, err := m.store.db.BeginTx(ctx, nil)
	if err != nil {
		return m.reject(actor, storeError("begin transaction", err), -1)
	}
	defer tx.Rollback()

	x := &txn{ctx: ctx, tx: tx, actor: actor, now: m.now().UTC()}
	for i, a := range actions {
		if err := x.apply(a); err != nil {
			pos := -1
			if batch {
				pos = i
			}
			return m.reject(actor, err, pos)
		}
		m.logger.Debug("action applied", "actor", actor, "type", a.Kind(), "position", i)
	}

	if err := tx.Commit(); err != nil {
		return m.reject(actor, storeError("commit", err), -1)
	}

	m.logger.Info("mutation committed", "actor", actor, "actions", len(actions))
	m.invalidator.Invalidate(actor)
	return nil
}

func (m *Mutator) reject(actor string, err error, pos int) error {
	var me *board.MutationError
	if !errors.As(err, &me) {
		me = storeError("apply", err)
	}
	me.Action = pos
	m.logger.Warn("mutation rejected", "actor", actor, "code", me.Code, "error", me.Message, "position", pos)
	return me
}

func storeError(op string, err error) *board.MutationError {
	return &board.MutationError{Code: board.CodeStore, Message: op + ": " + err.Error(), Action: -1, Err: err}
}

func invariantf(format string, args ...any) error {
	return board.Failf(board.CodeInvariant, format, args...)
}

// txn carries the state shared by every statement of one transaction.
type txn struct {
	ctx   context.Context
	tx    *sql.Tx
	actor string
	now   time.Time
}

func (x *txn) exec(query string, args ...any) (sql.Result, error) {
	return x.tx.ExecContext(x.ctx, query, args...)
}

func (x *txn) queryRow(query string, args ...any) *sql.Row {
	return x.tx.QueryRowContext(x.ctx, query, args...)
}

// validate is the schema re-check, run after authorization.
func (x *txn) validate(a board.Action) error {
	if err := board.Validate(a); err != nil {
		return board.Fail(board.CodeValidation, err)
	}
	return nil
}

func (x *txn) apply(a board.Action) error {
	switch v := a.(type) {
	case board.BoardCreate:
		return x.createBoard(v)
	case board.BoardRename:
		return x.renameBoard(v)
	case board.BoardDelete:
		return x.deleteBoard(v)
	case board.BoardMakeCurrent:
		return x.makeCurrent(v)
	case board.ColumnCreate:
		return x.createColumn(v)
	case board.ColumnRename:
		return x.renameColumn(v)
	case board.ColumnDelete:
		return x.deleteColumn(v)
	case board.TaskCreate:
		return x.createTask(v)
	case board.TaskRename:
		return x.renameTask(v)
	case board.TaskDelete:
		return x.deleteTask(v)
	case board.TaskToggle:
		return x.toggleTask(v)
	case board.TaskSwitchColumn:
		return x.switchColumn(v)
	case board.SubtaskCreate:
		return x.createSubtask(v)
	case board.SubtaskRename:
		return x.renameSubtask(v)
	case board.SubtaskDelete:
		return x.deleteSubtask(v)
	case board.SubtaskToggle:
		return x.toggleSubtask(v)
	}
	return board.Failf(board.CodeValidation, "unsupported action %T", a)
}
