// Package game owns the one mutable game context: the current parameter version,
// credits, the shop between rounds, and the sequence of rounds. The simulation core below it only receives
// a Params value and returns a Result.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/cytogenesis/internal/config"
	"github.com/talgya/cytogenesis/internal/economy"
	"github.com/talgya/cytogenesis/internal/engine"
	"github.com/talgya/cytogenesis/internal/entropy"
	"github.com/talgya/cytogenesis/internal/shop"
)

var (
	// ErrFinished is returned when a round is requested after the last level.
	ErrFinished = errors.New("game: all levels played")
	// ErrShopClosed is returned by Buy outside the shopping phase.
	ErrShopClosed = errors.New("game: shop is closed")
	// ErrNoOffer is returned by Buy for an offer index that does not exist.
	ErrNoOffer = errors.New("game: no such offer")
)

// Phase is the session's position in the round cycle.
type Phase uint8

const (
	PhaseColonizing Phase = iota // Cells growing
	PhaseSelling                 // Harvest being sold frame by frame
	PhaseShopping                // Between rounds, upgrades on offer
	PhaseFinished                // All levels played
)

// PhaseName returns a human-readable phase name.
func PhaseName(p Phase) string {
	switch p {
	case PhaseColonizing:
		return "colonizing"
	case PhaseSelling:
		return "selling"
	case PhaseShopping:
		return "shopping"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// RoundOutcome is the booked result of one level.
type RoundOutcome struct {
	Result        engine.Result `json:"result"`
	CreditsEarned float64       `json:"credits_earned"`
	SaleFrames    int           `json:"sale_frames"`
}

// Session is one playthrough.
type Session struct {
	ID     uuid.UUID `json:"id"`
	Player string    `json:"player"`

	// Workers is passed to every round (see engine.WithWorkers).
	Workers int `json:"-"`
	// OnRoundComplete runs after a round is booked, with the finished round.
	OnRoundComplete func(RoundOutcome, *engine.Round) `json:"-"`

	// Catalogue is what the shop draws from; ShopOffers is the number of offers per visit.
	Catalogue  []shop.Item `json:"-"`
	ShopOffers int         `json:"-"`

	mu         sync.RWMutex
	params     config.Params
	credits    float64
	runBiomass float64
	outcomes   []RoundOutcome
	round      *engine.Round
	last       *engine.Round
	sale       *economy.Sale
	offers     []shop.Offer
	phase      Phase
}

// NewSession starts a game from validated parameters.
func NewSession(p config.Params, player string) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if player == "" {
		player = "Unknown"
	}
	s := &Session{
		ID:         uuid.New(),
		Player:     player,
		Catalogue:  shop.DefaultCatalogue(),
		ShopOffers: shop.DefaultOffers,
		params:     p,
	}
	if p.Finished() {
		s.phase = PhaseFinished
	}
	return s, nil
}

// Params returns the parameters the next (or current) round uses.
func (s *Session) Params() config.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Credits is the player's balance, which is also the final score.
func (s *Session) Credits() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credits
}

// RunBiomass is the total biomass harvested over all rounds.
func (s *Session) RunBiomass() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runBiomass
}

// Outcomes returns a copy of the booked rounds.
func (s *Session) Outcomes() []RoundOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RoundOutcome(nil), s.outcomes...)
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Round returns the round in progress, else the last finished one, else nil.
func (s *Session) Round() *engine.Round {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.round != nil {
		return s.round
	}
	return s.last
}

// Finished reports whether every level has been played.
func (s *Session) Finished() bool {
	return s.Phase() == PhaseFinished
}

// StartRound builds the round for the current level.
func (s *Session) StartRound(src entropy.Source) (*engine.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startRoundLocked(src)
}

func (s *Session) startRoundLocked(src entropy.Source) (*engine.Round, error) {
	if s.phase == PhaseFinished {
		return nil, ErrFinished
	}
	r, err := engine.NewRound(s.params, src, engine.WithWorkers(s.Workers))
	if err != nil {
		return nil, fmt.Errorf("level %d: %w", s.params.CurrentLevel, err)
	}
	s.round = r
	s.sale = nil
	s.offers = nil
	s.phase = PhaseColonizing

	slog.Info("round started",
		"session", s.ID,
		"level", s.params.CurrentLevel,
		"tiles", humanize.Comma(int64(r.Grid.Len())),
		"cells", r.Line.Len(),
		"config_version", s.params.Version,
	)
	return r, nil
}

// PlayRound runs one whole level without frame pacing: the round to convergence,
// then the full sale. maxTicks bounds the round (0 = unbounded). Unless the game is
// over the session is left in the shop; Buy may be called before the next PlayRound,
// which closes the shop.
func (s *Session) PlayRound(src entropy.Source, maxTicks uint64) (RoundOutcome, error) {
	r, err := s.StartRound(src)
	if err != nil {
		return RoundOutcome{}, err
	}
	res, err := r.Run(maxTicks)
	if err != nil {
		return RoundOutcome{}, fmt.Errorf("level %d: %w", res.Level, err)
	}

	sale := economy.NewSale(res.Biomass, s.Params().BiomassPrice)
	for !sale.Done() {
		sale.Step()
	}
	return s.book(r, sale, src), nil
}

// Advance moves the session forward by one frame: a simulation tick while colonizing,
// one sale step while selling. It starts the next round as needed. The frame driver
// buys nothing, so a shopping frame just closes the shop.
func (s *Session) Advance(src entropy.Source) (Phase, error) {
	s.mu.Lock()
	if s.phase == PhaseFinished {
		s.mu.Unlock()
		return PhaseFinished, nil
	}
	if s.phase == PhaseShopping {
		s.leaveShopLocked()
		s.mu.Unlock()
		return PhaseColonizing, nil
	}
	if s.round == nil {
		if _, err := s.startRoundLocked(src); err != nil {
			s.mu.Unlock()
			return s.phase, err
		}
	}
	r, sale, price := s.round, s.sale, s.params.BiomassPrice
	s.mu.Unlock()

	if sale == nil {
		running, err := r.Step()
		if err != nil {
			return PhaseColonizing, fmt.Errorf("level %d: %w", r.Params.CurrentLevel, err)
		}
		if running {
			return PhaseColonizing, nil
		}
		s.mu.Lock()
		s.sale = economy.NewSale(r.Result().Biomass, price)
		s.phase = PhaseSelling
		s.mu.Unlock()
		return PhaseSelling, nil
	}

	if _, done := sale.Step(); !done {
		return PhaseSelling, nil
	}
	s.book(r, sale, src)
	return s.Phase(), nil
}

// Offers returns a copy of the offers of the current shop visit.
func (s *Session) Offers() []shop.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shop.Offer(nil), s.offers...)
}

// Buy purchases offer i of the current shop visit: credits are charged and the next
// round's parameters become a new version with the item applied. The offer is removed.
// It fails with shop.ErrInsufficientCredits when the player cannot afford it.
func (s *Session) Buy(i int) (shop.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseShopping {
		return shop.Offer{}, ErrShopClosed
	}
	if i < 0 || i >= len(s.offers) {
		return shop.Offer{}, fmt.Errorf("offer %d of %d: %w", i, len(s.offers), ErrNoOffer)
	}
	o := s.offers[i]
	params, credits, err := shop.Buy(s.params, s.credits, o)
	if err != nil {
		return o, err
	}
	s.params, s.credits = params, credits
	s.offers = append(s.offers[:i], s.offers[i+1:]...)

	slog.Info("upgrade bought",
		"session", s.ID,
		"item", o.Item.Name,
		"rarity", o.Rarity,
		"price", o.Price,
		"field", o.Item.Field,
		"config_version", s.params.Version,
		"credits", humanize.FormatFloat("#,###.##", s.credits),
	)
	return o, nil
}

// LeaveShop closes the shop; the next Advance or PlayRound starts the next round.
func (s *Session) LeaveShop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseShopping {
		s.leaveShopLocked()
	}
}

func (s *Session) leaveShopLocked() {
	s.offers = nil
	s.phase = PhaseColonizing
}

// book records a finished round and its sale, moves to the next level, and opens
// the shop unless the game is over.
func (s *Session) book(r *engine.Round, sale *economy.Sale, src entropy.Source) RoundOutcome {
	out := RoundOutcome{
		Result:        r.Result(),
		CreditsEarned: sale.Credits(),
		SaleFrames:    sale.Frames(),
	}

	s.mu.Lock()
	s.credits = economy.RoundCents(s.credits + out.CreditsEarned)
	s.runBiomass += out.Result.Biomass
	s.outcomes = append(s.outcomes, out)
	s.params = s.params.NextLevel()
	s.last = r
	s.round = nil
	s.sale = nil
	if s.params.Finished() {
		s.phase = PhaseFinished
	} else {
		s.phase = PhaseShopping
		s.offers = shop.Draw(s.Catalogue, s.ShopOffers, s.params.CurrentLevel, src)
	}
	credits := s.credits
	s.mu.Unlock()

	slog.Info("round complete",
		"session", s.ID,
		"level", out.Result.Level,
		"ticks", humanize.Comma(int64(out.Result.Ticks)),
		"cells", out.Result.Cells,
		"biomass", humanize.FormatFloat("#,###.##", out.Result.Biomass),
		"credits_earned", humanize.FormatFloat("#,###.##", out.CreditsEarned),
		"credits", humanize.FormatFloat("#,###.##", credits),
	)

	if s.OnRoundComplete != nil {
		s.OnRoundComplete(out, r)
	}
	return out
}
