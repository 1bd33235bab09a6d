package bot

import (
	"strconv"
	"strings"
)

// Command is what a button press or menu action resolves to. Callback
// payloads are parsed into these up front so the handlers never touch
// raw callback strings.
type Command int

const (
	CmdUnknown Command = iota
	CmdMenu
	CmdUpload
	CmdMyFiles
	CmdDeleteMenu
	CmdDeleteFile
	CmdLeaderboard
	CmdHelp
)

// Callback data as stored on the inline buttons.
const (
	cbMenu        = "menu"
	cbUpload      = "upload"
	cbMyFiles     = "files"
	cbDeleteMenu  = "delete"
	cbLeaderboard = "leaderboard"
	cbHelp        = "help"

	// Per-file delete buttons carry the file id: "del:<id>"
	cbDeletePrefix = "del:"
)

// Action is a parsed callback. FileID is only set for CmdDeleteFile.
type Action struct {
	Command Command
	FileID  uint
}

// ParseCallback maps raw callback data to an Action. Unrecognized or
// malformed data comes back as CmdUnknown.
func ParseCallback(data string) Action {
	switch data {
	case cbMenu:
		return Action{Command: CmdMenu}
	case cbUpload:
		return Action{Command: CmdUpload}
	case cbMyFiles:
		return Action{Command: CmdMyFiles}
	case cbDeleteMenu:
		return Action{Command: CmdDeleteMenu}
	case cbLeaderboard:
		return Action{Command: CmdLeaderboard}
	case cbHelp:
		return Action{Command: CmdHelp}
	}

	if rest, ok := strings.CutPrefix(data, cbDeletePrefix); ok {
		id, err := strconv.ParseUint(rest, 10, 32)
		if err != nil || id == 0 {
			return Action{Command: CmdUnknown}
		}
		return Action{Command: CmdDeleteFile, FileID: uint(id)}
	}

	return Action{Command: CmdUnknown}
}
