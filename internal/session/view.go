package session

import (
	"github.com/omochice/aurorachat/internal/conn"
	"github.com/omochice/aurorachat/internal/keyboard"
)

// View is a snapshot of everything a renderer draws.
type View struct {
	Scene    Scene
	Log      []string
	Input    string
	InputLen int
	InputCap int
	Keys     [][]keyboard.Key
	Row      int
	Col      int
	Shift    bool
	Rules    []string
	Server   string
	State    conn.State
	Stats    conn.Stats
}

// View returns the current snapshot.
func (s *Session) View() View {
	row, col := s.kb.Cursor()
	return View{
		Scene:    s.scene,
		Log:      s.log.Lines(),
		Input:    s.input.String(),
		InputLen: s.input.Len(),
		InputCap: s.input.Cap(),
		Keys:     s.kb.Rows(),
		Row:      row,
		Col:      col,
		Shift:    s.kb.Shift(),
		Rules:    s.rules,
		Server:   s.conn.Address(),
		State:    s.conn.State(),
		Stats:    s.conn.Stats(),
	}
}
