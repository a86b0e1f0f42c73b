// Package services – ModerationService
//
// This file implements the moderation engine: the component that receives
// every inbound chat message, classifies it as a bot command or free text,
// and reacts. Commands mutate the tally store directly and always produce a
// reply. Free text is scanned for vocabulary terms — but only when the
// sender is registered — and a match bumps the sender's tallies and emits a
// cooldown-gated warning.
//
// The engine holds no per-message state of its own; everything durable lives
// in the tally store, and the only process-local state is the warning
// cooldown. One failing message never affects the next.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/kootkounter/kootbot/internal/domain"
	"github.com/kootkounter/kootbot/internal/metrics"
	"github.com/kootkounter/kootbot/internal/repo"
	"github.com/kootkounter/kootbot/internal/throttle"
)

// Recognized command words (following the configured trigger prefix).
const (
	cmdHelp       = "help"
	cmdRegister   = "register"
	cmdUnregister = "unregister"
	cmdShow       = "show"
)

// warnAction is the shared cooldown key for the warning reply. All matches
// compete for the same gate regardless of which user triggered them.
const warnAction = "warn"

// warnReply is the fixed warning emitted when a tracked user trips the
// matcher and the cooldown gate allows it.
const warnReply = "Degeneracy detected. Your tally has been updated. Seek help."

// Inbound is one chat message as delivered by the transport.
type Inbound struct {
	// AuthorID is the platform-assigned id of the sender.
	AuthorID int64
	// AuthorName is the sender's current display name, used to refresh the
	// stored one on every match.
	AuthorName string
	// Text is the raw message content.
	Text string
}

// UserRepo defines the tally-store contract required by ModerationService.
// Implementations must commit every mutation before returning.
type UserRepo interface {
	// GetOrCreateUser returns the record for id, creating it when absent.
	GetOrCreateUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error)
	// IncrementCounts bumps id's tallies for terms and refreshes the name.
	IncrementCounts(ctx context.Context, db *gorm.DB, id int64, terms []string, displayName string) error
	// DeleteUser removes id's record; unknown ids are a no-op success.
	DeleteUser(ctx context.Context, db *gorm.DB, id int64) error
	// ListUsers returns every tracked user in stable order.
	ListUsers(ctx context.Context, db *gorm.DB) ([]domain.TrackedUser, error)
	// IsRegistered reports whether id has a record.
	IsRegistered(ctx context.Context, db *gorm.DB, id int64) (bool, error)
}

// Detector extracts vocabulary terms from free text.
type Detector interface {
	Detect(text string) []string
}

// WarnGate throttles the shared warning action. A rejection is a
// *throttle.ThrottledError.
type WarnGate interface {
	TryRun(action string) error
}

// ModerationService orchestrates matcher, tally store, and cooldown gate
// over each inbound message. It is stateless between messages and safe for
// interleaved invocations.
type ModerationService struct {
	// DB is the GORM handle passed through to the repository.
	DB *gorm.DB
	// Repo is the tally store.
	Repo UserRepo
	// Match is the term matcher.
	Match Detector
	// Gate throttles the warning reply.
	Gate WarnGate

	// Trigger is the command prefix, e.g. "#KK".
	Trigger string
	// AutoRegister switches from explicit-registration-required (the
	// default) to tracking every sender on their first detected match.
	AutoRegister bool
}

// NewModerationService constructs a ModerationService with the default
// explicit-registration policy.
func NewModerationService(db *gorm.DB, r UserRepo, m Detector, g WarnGate, trigger string) *ModerationService {
	return &ModerationService{
		DB:      db,
		Repo:    r,
		Match:   m,
		Gate:    g,
		Trigger: trigger,
	}
}

// HandleReady logs the transport's ready signal. The engine takes no other
// action on lifecycle events.
func (s *ModerationService) HandleReady(ctx context.Context) {
	log.Info().Str("trigger", s.Trigger).Msg("transport ready, watching for degeneracy")
}

// HandleMessage processes one inbound message and returns the replies to
// send back to the chat, possibly none.
//
// Error contract: a non-nil error is always a storage failure. User-facing
// problems (malformed arguments, unknown ids) come back as replies, and
// throttled warnings are suppressed silently.
func (s *ModerationService) HandleMessage(ctx context.Context, msg Inbound) ([]string, error) {
	metrics.MessagesProcessed.Inc()

	if cmd, rest, ok := s.command(msg.Text); ok {
		metrics.CommandsHandled.WithLabelValues(cmd).Inc()
		return s.handleCommand(ctx, cmd, rest)
	}
	return s.scan(ctx, msg)
}

// command splits a trigger-prefixed message into its command word and
// argument remainder. Text without the trigger, or with an unrecognized
// word after it, reports ok=false and falls through to the scan path.
func (s *ModerationService) command(text string) (cmd, rest string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, s.Trigger) {
		return "", "", false
	}
	fields := strings.Fields(strings.TrimPrefix(trimmed, s.Trigger))
	if len(fields) == 0 {
		return "", "", false
	}
	switch fields[0] {
	case cmdHelp, cmdRegister, cmdUnregister, cmdShow:
		return fields[0], strings.Join(fields[1:], " "), true
	}
	return "", "", false
}

// handleCommand executes a recognized command. Argument validation happens
// before any storage access; malformed input never reaches the tally store.
func (s *ModerationService) handleCommand(ctx context.Context, cmd, rest string) ([]string, error) {
	switch cmd {
	case cmdHelp:
		return []string{s.helpReply()}, nil

	case cmdRegister:
		id, err := parseIDArg(rest)
		if err != nil {
			return []string{s.usageReply(cmdRegister)}, nil
		}
		if _, err := s.Repo.GetOrCreateUser(ctx, s.DB, id); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Now tracking user %d. Tallies start at zero.", id)}, nil

	case cmdUnregister:
		id, err := parseIDArg(rest)
		if err != nil {
			return []string{s.usageReply(cmdUnregister)}, nil
		}
		// Deleting an untracked id is a success: the end state is the same.
		if err := s.Repo.DeleteUser(ctx, s.DB, id); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("No longer tracking user %d.", id)}, nil

	case cmdShow:
		users, err := s.Repo.ListUsers(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return []string{"Nobody is being tracked right now."}, nil
		}
		replies := make([]string, 0, len(users)+1)
		replies = append(replies, showHeader())
		for i := range users {
			replies = append(replies, showRow(&users[i]))
		}
		return replies, nil
	}

	// command() only admits the four words above.
	return nil, nil
}

// scan runs the free-text path: registration gate, term matching, tally
// update, cooldown-gated warning.
func (s *ModerationService) scan(ctx context.Context, msg Inbound) ([]string, error) {
	registered, err := s.Repo.IsRegistered(ctx, s.DB, msg.AuthorID)
	if err != nil {
		return nil, err
	}
	// Untracked senders are never scanned: the matcher must not even run.
	if !registered && !s.AutoRegister {
		return nil, nil
	}

	terms := s.Match.Detect(msg.Text)
	if len(terms) == 0 {
		return nil, nil
	}

	if !registered {
		if _, err := s.Repo.GetOrCreateUser(ctx, s.DB, msg.AuthorID); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.IncrementCounts(ctx, s.DB, msg.AuthorID, terms, msg.AuthorName); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// The record vanished between the gate check and the update
			// (an unregister raced us). Skip silently, same as untracked.
			return nil, nil
		}
		return nil, err
	}
	for _, term := range terms {
		metrics.TermsDetected.WithLabelValues(term).Inc()
	}

	if err := s.Gate.TryRun(warnAction); err != nil {
		var te *throttle.ThrottledError
		if errors.As(err, &te) {
			metrics.WarningsThrottled.Inc()
			log.Debug().
				Int64("author_id", msg.AuthorID).
				Dur("remaining", te.Remaining).
				Msg("warning suppressed by cooldown")
			return nil, nil
		}
		return nil, err
	}

	metrics.WarningsSent.Inc()
	return []string{warnReply}, nil
}

// helpReply renders the static usage block.
func (s *ModerationService) helpReply() string {
	return strings.Join([]string{
		"Commands:",
		fmt.Sprintf("  %s help              show this message", s.Trigger),
		fmt.Sprintf("  %s register <id>     start tracking a user's degeneracy", s.Trigger),
		fmt.Sprintf("  %s unregister <id>   stop tracking and erase the tally", s.Trigger),
		fmt.Sprintf("  %s show              list every tracked user and their tallies", s.Trigger),
	}, "\n")
}

// usageReply renders the error reply for a malformed command argument.
func (s *ModerationService) usageReply(cmd string) string {
	return fmt.Sprintf("Expected a single numeric id. Usage: %s %s <id>", s.Trigger, cmd)
}

// parseIDArg parses the argument remainder of register/unregister: exactly
// one decimal integer.
func parseIDArg(rest string) (int64, error) {
	fields := strings.Fields(rest)
	if len(fields) != 1 {
		return 0, ErrInvalidArgument
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, ErrInvalidArgument
	}
	return id, nil
}

// showHeader renders the fixed-width column header for the show command.
func showHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s%-16s", "id", "name")
	for _, term := range domain.Vocabulary() {
		fmt.Fprintf(&b, "%8s", term)
	}
	return b.String()
}

// showRow renders one tracked user as a fixed-width single-line summary.
func showRow(u *domain.TrackedUser) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20d%-16s", u.ID, u.DisplayName)
	for _, term := range domain.Vocabulary() {
		fmt.Fprintf(&b, "%8d", u.Count(term))
	}
	return b.String()
}
