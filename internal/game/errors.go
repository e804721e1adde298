package game

import "errors"

// Rejections are returned to the acting player as a notice. The messages are
// user facing.
var (
	ErrAlreadyRunning          = errors.New("The game is already running")
	ErrNotEnoughPlayers        = errors.New("At least 3 players are needed to start")
	ErrNotEnoughPromptCards    = errors.New("The selected decks do not have enough black cards")
	ErrNotEnoughCandidateCards = errors.New("The selected decks do not have enough white cards")

	ErrGameNotFound    = errors.New("Game not found")
	ErrGameFull        = errors.New("That game is full")
	ErrWrongSecret     = errors.New("Invalid password")
	ErrAlreadyInGame   = errors.New("You are already in a game")
	ErrNotInGame       = errors.New("You are not in a game")
	ErrUnknownPlayer   = errors.New("Unknown player")
	ErrInvalidGameName = errors.New("Invalid game name")
	ErrNotHost         = errors.New("Only the host can do that")
	ErrDeckNotFound    = errors.New("Deck not found")
	ErrInvalidSettings = errors.New("Invalid settings")

	ErrWrongPhase         = errors.New("You can't do that right now")
	ErrJudgeCannotSubmit  = errors.New("The judge does not play cards this round")
	ErrAlreadySubmitted   = errors.New("You have already played your cards this round")
	ErrWrongPickCount     = errors.New("Wrong number of cards played")
	ErrDuplicateCards     = errors.New("You can't play the same card twice")
	ErrCardNotInHand      = errors.New("That card is not in your hand")
	ErrDiscardNotAllowed  = errors.New("Discarding your hand is disabled in this game")
	ErrDiscardAlreadyUsed = errors.New("You have already discarded your hand this round")

	ErrNotJudge            = errors.New("Only the judge can pick the winner")
	ErrWinnerAlreadyChosen = errors.New("A winner has already been picked")
	ErrUnknownToken        = errors.New("That card is not on the table")
)
