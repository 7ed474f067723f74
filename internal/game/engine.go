package game

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"promptbattle/internal/model"
)

// Fallback image references used when a generation call fails outright. The
// generator has its own internal fallback; these cover errors it still
// surfaces, so voting always has one entry per player.
const (
	erroredImageURL  = "https://via.placeholder.com/400x400/ef4444/ffffff?text=Error"
	noPromptImageURL = "https://via.placeholder.com/400x400/94a3b8/ffffff?text=No+Prompt"
)

// runCountdown emits the remaining pre-game countdown ticks, then starts
// round one. Players cannot cancel it; it only aborts if the room is gone.
func (m *Manager) runCountdown(roomID string, countdown int) {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for c := countdown - 1; c >= 0; c-- {
		<-ticker.C
		m.bcast.ToRoom(roomID, model.EventGameStarting, model.GameStartingPayload{Countdown: c})
	}

	m.withRoom(roomID, func(r *Room) {
		if r.state != model.RoomStarting {
			return
		}
		m.startRound(r)
	})
}

// startRound begins the prompting phase of the next round: fresh word, fresh
// per-round maps, 30 seconds on the clock.
func (m *Manager) startRound(r *Room) {
	r.currentRound++
	r.state = model.RoomPrompting
	r.word = randomWord()
	r.prompts = make(map[string]string)
	r.images = make(map[string]string)
	r.votes = make(map[string]string)

	m.bcast.ToRoom(r.id, model.EventRoundStart, model.RoundStartPayload{
		Round:       r.currentRound,
		Word:        r.word,
		TotalRounds: r.maxRounds,
	})
	m.bcast.ToRoom(r.id, model.EventRoomUpdated, r.snapshot())
	m.log.Info().Str("code", r.code).Int("round", r.currentRound).Str("word", r.word).Msg("round started")

	m.startTimer(r, m.cfg.PromptSeconds, m.finishPrompting)
}

// startTimer replaces the room's phase timer. Session transitions always stop
// the previous timer before arming the next one.
func (m *Manager) startTimer(r *Room, seconds int, onExpire func(roomID string)) {
	r.stopTimer()
	r.timerSeconds = seconds
	roomID := r.id

	m.bcast.ToRoom(roomID, model.EventTimerStart, model.TimerStartPayload{Duration: seconds})

	t := NewPhaseTimer()
	r.timer = t
	t.Start(seconds, m.cfg.TickInterval, func(remaining int) {
		m.handleTick(roomID, t, remaining)
	}, func() {
		onExpire(roomID)
	})
}

// handleTick applies one countdown tick. A tick can race stopTimer at a phase
// boundary, so it only lands if its timer is still the room's current one.
func (m *Manager) handleTick(roomID string, t *PhaseTimer, remaining int) {
	m.withRoom(roomID, func(r *Room) {
		if r.timer != t {
			return
		}
		r.timerSeconds = remaining
		m.bcast.ToRoom(roomID, model.EventTimerTick, model.TimerTickPayload{TimeLeft: remaining})
	})
}

func (m *Manager) finishPrompting(roomID string) {
	m.withRoom(roomID, func(r *Room) {
		if r.state != model.RoomPrompting {
			return
		}
		m.beginGeneration(r)
	})
}

type genJob struct {
	playerID  string
	prompt    string
	submitted bool
}

// beginGeneration moves the room into the generating phase and kicks off the
// image fan-out. The room lock is not held while generation runs; the fan-in
// re-enters through withRoom once every request has resolved.
func (m *Manager) beginGeneration(r *Room) {
	r.state = model.RoomGenerating
	r.stopTimer()
	r.timerSeconds = 0

	m.bcast.ToRoom(r.id, model.EventPhaseChange, model.PhaseChangePayload{Phase: model.RoomGenerating})
	m.bcast.ToRoom(r.id, model.EventRoomUpdated, r.snapshot())

	// One job per submitted prompt (including players who left after
	// submitting), plus a word-only job for every player who stayed silent.
	jobs := make([]genJob, 0, len(r.players))
	for playerID, prompt := range r.prompts {
		jobs = append(jobs, genJob{playerID: playerID, prompt: prompt, submitted: true})
	}
	for _, p := range r.players {
		if _, ok := r.prompts[p.ID]; !ok {
			jobs = append(jobs, genJob{playerID: p.ID})
		}
	}

	go m.runGeneration(r.id, r.word, jobs)
}

// runGeneration fans out one generation request per job, waits for the whole
// batch, then stores the results and opens voting. Individual failures
// resolve to placeholders; they never abort the round.
func (m *Manager) runGeneration(roomID, word string, jobs []genJob) {
	results := make([]string, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		i, job := i, job
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := m.images.Generate(context.Background(), word, job.prompt)
			if err != nil {
				m.log.Error().Err(err).Str("player", job.playerID).Msg("image generation failed")
				if job.submitted {
					url = erroredImageURL
				} else {
					url = noPromptImageURL
				}
			}
			results[i] = url
		}()
	}
	wg.Wait()

	m.withRoom(roomID, func(r *Room) {
		if r.state != model.RoomGenerating {
			return
		}
		for i, job := range jobs {
			r.images[job.playerID] = results[i]
		}
		m.log.Info().Str("code", r.code).Int("images", len(r.images)).Msg("generation complete")
		m.startVoting(r)
	})
}

// startVoting shuffles the images so the ballot leaks neither submission
// order nor ownership, then opens a 30 second voting window.
func (m *Manager) startVoting(r *Room) {
	r.state = model.RoomVoting

	ballot := make([]model.VotingImage, 0, len(r.images))
	for playerID, url := range r.images {
		ballot = append(ballot, model.VotingImage{PlayerID: playerID, ImageURL: url})
	}
	rand.Shuffle(len(ballot), func(i, j int) {
		ballot[i], ballot[j] = ballot[j], ballot[i]
	})

	m.bcast.ToRoom(r.id, model.EventVotingStart, model.VotingStartPayload{Images: ballot})
	m.bcast.ToRoom(r.id, model.EventRoomUpdated, r.snapshot())

	m.startTimer(r, m.cfg.VoteSeconds, m.finishVoting)
}

func (m *Manager) finishVoting(roomID string) {
	m.withRoom(roomID, func(r *Room) {
		if r.state != model.RoomVoting {
			return
		}
		m.revealResults(r)
	})
}

// revealResults tallies the votes, applies scores and the winner bonus,
// appends the immutable round summary, and de-anonymizes the images.
func (m *Manager) revealResults(r *Room) {
	r.state = model.RoomRevealing
	r.stopTimer()
	r.timerSeconds = 0

	tally := make(map[string]int)
	for _, targetID := range r.votes {
		tally[targetID]++
	}

	// One point per vote received. Only players still present score; votes
	// for players who left still appear in the tally for the recap.
	maxVotes := 0
	winners := []string{}
	for targetID, n := range tally {
		p := r.findPlayer(targetID)
		if p == nil {
			continue
		}
		p.Score += n
		switch {
		case n > maxVotes:
			maxVotes = n
			winners = []string{targetID}
		case n == maxVotes:
			winners = append(winners, targetID)
		}
	}

	// A fixed 2-point bonus pool split evenly among the round winners.
	// Integer division is intentional: three-way ties get nothing.
	if maxVotes > 0 {
		bonus := 2 / len(winners)
		for _, winnerID := range winners {
			if p := r.findPlayer(winnerID); p != nil {
				p.Score += bonus
			}
		}
	}

	scores := make([]model.PlayerScore, len(r.players))
	for i, p := range r.players {
		scores[i] = model.PlayerScore{ID: p.ID, Name: p.Name, Score: p.Score}
	}

	result := model.RoundResult{
		Round:   r.currentRound,
		Word:    r.word,
		Votes:   tally,
		Winners: winners,
		Scores:  scores,
	}
	r.roundResults = append(r.roundResults, result)

	images := make([]model.ResultImage, 0, len(r.images))
	for playerID, url := range r.images {
		name := ""
		if p := r.findPlayer(playerID); p != nil {
			name = p.Name
		}
		images = append(images, model.ResultImage{
			PlayerID:   playerID,
			PlayerName: name,
			ImageURL:   url,
			Prompt:     r.prompts[playerID],
			Votes:      tally[playerID],
		})
	}

	m.bcast.ToRoom(r.id, model.EventRoundResults, model.RoundResultsPayload{Results: result, Images: images})
	m.bcast.ToRoom(r.id, model.EventRoomUpdated, r.snapshot())

	// Fixed display window before the next round; always runs to completion.
	roomID := r.id
	time.AfterFunc(m.cfg.ResultsDelay, func() {
		m.withRoom(roomID, func(r *Room) {
			if r.state != model.RoomRevealing {
				return
			}
			if r.currentRound < r.maxRounds {
				m.startRound(r)
			} else {
				m.endGame(r)
			}
		})
	})
}

// endGame publishes the final standings and archives the recap. The room
// stays queryable until its last member disconnects.
func (m *Manager) endGame(r *Room) {
	r.state = model.RoomFinished

	finalScores := make([]model.FinalScore, len(r.players))
	for i, p := range r.players {
		finalScores[i] = model.FinalScore{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Score: p.Score}
	}
	sort.SliceStable(finalScores, func(i, j int) bool {
		return finalScores[i].Score > finalScores[j].Score
	})

	m.bcast.ToRoom(r.id, model.EventGameFinished, model.GameFinishedPayload{
		FinalScores: finalScores,
		Winner:      finalScores[0],
		AllResults:  r.roundResults,
	})
	m.bcast.ToRoom(r.id, model.EventRoomUpdated, r.snapshot())
	m.log.Info().Str("code", r.code).Str("winner", finalScores[0].Name).Msg("game finished")

	if m.recaps == nil {
		return
	}
	recap := model.GameRecap{
		RoomID:      r.id,
		RoomCode:    r.code,
		FinishedAt:  time.Now().UTC(),
		Winner:      finalScores[0],
		FinalScores: finalScores,
		Rounds:      append([]model.RoundResult(nil), r.roundResults...),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.recaps.Create(ctx, &recap); err != nil {
			m.log.Error().Err(err).Str("code", recap.RoomCode).Msg("failed to archive recap")
		}
	}()
}
