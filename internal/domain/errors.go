package domain

import "errors"

// ErrorCode identifies a rejection that is reported back to the caller.
type ErrorCode string

const (
	CodeRoomNotFound      ErrorCode = "ROOM_NOT_FOUND"
	CodeGameInProgress    ErrorCode = "GAME_IN_PROGRESS"
	CodeRoomFull          ErrorCode = "ROOM_FULL"
	CodePlayerNotFound    ErrorCode = "PLAYER_NOT_FOUND"
	CodeNotHost           ErrorCode = "NOT_HOST"
	CodeNotEnoughPlayers  ErrorCode = "NOT_ENOUGH_PLAYERS"
	CodeNotJudge          ErrorCode = "NOT_JUDGE"
	CodeInvalidPhrase     ErrorCode = "INVALID_PHRASE"
	CodeJudgeCannotSubmit ErrorCode = "JUDGE_CANNOT_SUBMIT"
	CodeAlreadySubmitted  ErrorCode = "ALREADY_SUBMITTED"
	CodeInvalidMeme       ErrorCode = "INVALID_MEME"
	CodeInvalidSelection  ErrorCode = "INVALID_SELECTION"
	CodeNotWinner         ErrorCode = "NOT_WINNER"
)

// Error is a typed rejection. Room state is untouched whenever one is returned.
type Error struct {
	Code    ErrorCode
	message string
}

func (e *Error) Error() string {
	return e.message
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, message: message}
}

// Domain errors
var (
	ErrRoomNotFound      = newError(CodeRoomNotFound, "room not found")
	ErrGameInProgress    = newError(CodeGameInProgress, "game already in progress")
	ErrRoomFull          = newError(CodeRoomFull, "room is full")
	ErrPlayerNotFound    = newError(CodePlayerNotFound, "player not found")
	ErrNotHost           = newError(CodeNotHost, "only host can perform this action")
	ErrNotEnoughPlayers  = newError(CodeNotEnoughPlayers, "not enough players to start")
	ErrNotJudge          = newError(CodeNotJudge, "only the judge can perform this action")
	ErrInvalidPhrase     = newError(CodeInvalidPhrase, "phrase is not among the offered options")
	ErrJudgeCannotSubmit = newError(CodeJudgeCannotSubmit, "judge cannot submit a meme")
	ErrAlreadySubmitted  = newError(CodeAlreadySubmitted, "already submitted this round")
	ErrInvalidMeme       = newError(CodeInvalidMeme, "meme is not in hand")
	ErrInvalidSelection  = newError(CodeInvalidSelection, "invalid submission position")
	ErrNotWinner         = newError(CodeNotWinner, "only the round winner can start the next round")
)

// ErrIgnored marks an action that is dropped without telling the caller:
// wrong phase, unknown player, or nothing to act on.
var ErrIgnored = errors.New("action ignored")

// CodeOf extracts the error code from a typed domain error.
func CodeOf(err error) (ErrorCode, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
