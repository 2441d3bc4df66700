package usecase

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
)

// Menu button labels. The transport renders these on the reply keyboard
// and the engine matches inbound text against them verbatim.
const (
	CmdStart       = "/start"
	CmdAddItem     = "Add item"
	CmdMyItems     = "My items"
	CmdCheckNow    = "Check price now"
	CmdNotifySetup = "Notification settings"
	CmdSupport     = "Support project"
	CmdFeedback    = "Feedback"
	CmdBackToMenu  = "Back to menu"
)

// step is a user's position inside a multi-turn flow. Transient, process
// memory only; a restart drops everyone back to the menu.
type step int

const (
	stepIdle step = iota
	stepAwaitingNotifyTime
	stepAwaitingProductLink
	stepAwaitingFeedbackText
	stepAwaitingNotifyTimeChange
)

// ActionKind tells the caller what the engine decided for one message.
type ActionKind int

const (
	ActionShowMenu ActionKind = iota
	ActionPromptNotifyTime
	ActionPromptLink
	ActionSetNotifyTime
	ActionChangeNotifyTime
	ActionCreateSubscription
	ActionDeleteSubscription
	ActionSubmitFeedback
	ActionPromptFeedback
	ActionListSubscriptions
	ActionCheckNow
	ActionSupportProject
	ActionCapacityError
	ActionTimeFormatError
	ActionURLError
	ActionUnsupportedShop
)

// Action is the engine's verdict for one inbound message. Only the
// fields relevant to the Kind are set.
type Action struct {
	Kind           ActionKind
	NotifyTime     model.TimeOfDay
	URL            string
	SubscriptionID string
	Text           string
}

type userState struct {
	mu   sync.Mutex
	step step
}

const stateShards = 16

// stateTable holds per-user conversation state behind striped locks so
// unrelated users never contend.
type stateTable struct {
	shards [stateShards]struct {
		mu     sync.Mutex
		states map[int64]*userState
	}
}

func newStateTable() *stateTable {
	t := &stateTable{}
	for i := range t.shards {
		t.shards[i].states = make(map[int64]*userState)
	}
	return t
}

func (t *stateTable) get(userID int64) *userState {
	h := fnv.New32a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(userID >> (8 * i))
	}
	h.Write(buf[:])
	shard := &t.shards[h.Sum32()%stateShards]

	shard.mu.Lock()
	defer shard.mu.Unlock()
	st, ok := shard.states[userID]
	if !ok {
		st = &userState{}
		shard.states[userID] = st
	}
	return st
}

// ConversationUseCase is the per-user intake state machine. It turns raw
// message text into exactly one Action; executing that Action (storage
// writes, timer arming, outbound messages) is the facade's job, except
// for the subscription count read the cap check needs.
//
// Messages from the same user are serialized on the user's state lock,
// so two near-simultaneous taps cannot both pass the cap check against
// the same stale count.
type ConversationUseCase struct {
	subs   repository.SubscriptionRepository
	shops  adapter.ShopDispatch
	states *stateTable
	log    *zerolog.Logger
}

func NewConversationUseCase(
	subs repository.SubscriptionRepository,
	shops adapter.ShopDispatch,
	logger *zerolog.Logger,
) *ConversationUseCase {
	ucLog := logger.With().Str("component", "ConversationUseCase").Logger()
	return &ConversationUseCase{
		subs:   subs,
		shops:  shops,
		states: newStateTable(),
		log:    &ucLog,
	}
}

// OnMessage advances the user's state machine by one message.
func (uc *ConversationUseCase) OnMessage(ctx context.Context, user *model.User, text string) Action {
	st := uc.states.get(user.ID)
	st.mu.Lock()
	defer st.mu.Unlock()

	text = strings.TrimSpace(text)

	// "Back to menu" and /start abort any flow from any state.
	if text == CmdBackToMenu || text == CmdStart {
		st.step = stepIdle
		return Action{Kind: ActionShowMenu}
	}

	switch st.step {
	case stepIdle:
		return uc.handleIdle(ctx, st, user, text)
	case stepAwaitingNotifyTime:
		return uc.handleNotifyTime(st, text, stepAwaitingProductLink, ActionSetNotifyTime)
	case stepAwaitingNotifyTimeChange:
		return uc.handleNotifyTime(st, text, stepIdle, ActionChangeNotifyTime)
	case stepAwaitingProductLink:
		return uc.handleProductLink(st, text)
	case stepAwaitingFeedbackText:
		st.step = stepIdle
		return Action{Kind: ActionSubmitFeedback, Text: text}
	default:
		st.step = stepIdle
		return Action{Kind: ActionShowMenu}
	}
}

// OnDelete handles a delete button press. Valid from any state and
// always drops the user back to the menu.
func (uc *ConversationUseCase) OnDelete(user *model.User, subscriptionID string) Action {
	st := uc.states.get(user.ID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.step = stepIdle
	return Action{Kind: ActionDeleteSubscription, SubscriptionID: subscriptionID}
}

func (uc *ConversationUseCase) handleIdle(ctx context.Context, st *userState, user *model.User, text string) Action {
	switch text {
	case CmdAddItem:
		count, err := uc.subs.CountByUser(ctx, user.ID)
		if err != nil {
			uc.log.Error().Err(err).Int64("user_id", user.ID).Msg("count subscriptions failed")
			return Action{Kind: ActionShowMenu}
		}
		if count >= model.MaxSubscriptionsPerUser {
			return Action{Kind: ActionCapacityError}
		}
		if user.NotifyTime == nil {
			st.step = stepAwaitingNotifyTime
			return Action{Kind: ActionPromptNotifyTime}
		}
		st.step = stepAwaitingProductLink
		return Action{Kind: ActionPromptLink}

	case CmdMyItems:
		return Action{Kind: ActionListSubscriptions}

	case CmdCheckNow:
		return Action{Kind: ActionCheckNow}

	case CmdNotifySetup:
		st.step = stepAwaitingNotifyTimeChange
		return Action{Kind: ActionPromptNotifyTime}

	case CmdSupport:
		return Action{Kind: ActionSupportProject}

	case CmdFeedback:
		st.step = stepAwaitingFeedbackText
		return Action{Kind: ActionPromptFeedback}

	default:
		return Action{Kind: ActionShowMenu}
	}
}

// handleNotifyTime validates HH:MM input shared by the intake flow and
// the settings flow; the flows differ only in where success leads.
func (uc *ConversationUseCase) handleNotifyTime(st *userState, text string, onSuccess step, kind ActionKind) Action {
	at, err := model.ParseTimeOfDay(text)
	if err != nil {
		return Action{Kind: ActionTimeFormatError}
	}
	st.step = onSuccess
	return Action{Kind: kind, NotifyTime: at}
}

func (uc *ConversationUseCase) handleProductLink(st *userState, text string) Action {
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return Action{Kind: ActionURLError}
	}
	if _, ok := uc.shops.Resolve(text); !ok {
		return Action{Kind: ActionUnsupportedShop}
	}
	st.step = stepIdle
	return Action{Kind: ActionCreateSubscription, URL: text}
}
