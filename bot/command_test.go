package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	cases := []struct {
		data string
		want Action
	}{
		{"menu", Action{Command: CmdMenu}},
		{"upload", Action{Command: CmdUpload}},
		{"files", Action{Command: CmdMyFiles}},
		{"delete", Action{Command: CmdDeleteMenu}},
		{"leaderboard", Action{Command: CmdLeaderboard}},
		{"help", Action{Command: CmdHelp}},
		{"del:17", Action{Command: CmdDeleteFile, FileID: 17}},
		{"del:1", Action{Command: CmdDeleteFile, FileID: 1}},
	}

	for _, c := range cases {
		require.Equal(t, c.want, ParseCallback(c.data), c.data)
	}
}

func TestParseCallback_Malformed(t *testing.T) {
	for _, data := range []string{
		"",
		"nope",
		"del:",
		"del:abc",
		"del:0",
		"del:-1",
		"DEL:3",
		"delete_1",
	} {
		require.Equal(t, Action{Command: CmdUnknown}, ParseCallback(data), data)
	}
}
