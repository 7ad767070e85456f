package board

import "testing"

// TestStartFENRoundTrip parses the starting FEN and writes it back.
func TestStartFENRoundTrip(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatalf("Failed to parse start FEN: %v", err)
	}

	if got := pos.ToFEN(); got != StartFEN {
		t.Errorf("round trip = %q, want %q", got, StartFEN)
	}
}

// TestStartingLayout spot-checks the initial piece placement.
func TestStartingLayout(t *testing.T) {
	pos := NewPosition()

	checks := []struct {
		sq   Square
		want Piece
	}{
		{A5, BlackKing},
		{B5, BlackQueen},
		{C5, BlackBishop},
		{D5, BlackKnight},
		{C4, BlackPawn},
		{D4, BlackPawn},
		{B2, WhitePawn},
		{C2, WhitePawn},
		{B1, WhiteKnight},
		{C1, WhiteBishop},
		{D1, WhiteQueen},
		{E1, WhiteKing},
		{E5, NoPiece},
		{C3, NoPiece},
	}

	for _, c := range checks {
		if got := pos.PieceAt(c.sq); got != c.want {
			t.Errorf("piece at %s = %v, want %v", c.sq, got, c.want)
		}
	}

	if pos.SideToMove != White {
		t.Errorf("side to move = %v, want White", pos.SideToMove)
	}
	if pos.KingSquare[White] != E1 || pos.KingSquare[Black] != A5 {
		t.Errorf("king squares = %v/%v, want e1/a5", pos.KingSquare[White], pos.KingSquare[Black])
	}
	if pos.HalfMoveClock != 0 || pos.FullMoveNumber != 1 {
		t.Errorf("clocks = %d/%d, want 0/1", pos.HalfMoveClock, pos.FullMoveNumber)
	}
}

// TestFENAfterCapture checks placement, side, and clock after d1d4.
func TestFENAfterCapture(t *testing.T) {
	pos := NewPosition()
	m, err := ParseMove("d1d4", pos)
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	pos.MakeMove(m)

	want := "kqbn1/2pQ1/5/1PP2/1NB1K b 0 1"
	if got := pos.ToFEN(); got != want {
		t.Errorf("FEN after d1d4 = %q, want %q", got, want)
	}
}

// TestParseFENErrors rejects malformed and impossible inputs.
func TestParseFENErrors(t *testing.T) {
	cases := []struct {
		name string
		fen  string
	}{
		{"TooFewFields", "kqbn1/2pp1/5/1PP2/1NBQK"},
		{"TooFewRanks", "kqbn1/5/1PP2/1NBQK w 0 1"},
		{"TooManyRanks", "kqbn1/5/5/5/5/1NBQK w 0 1"},
		{"BadPieceChar", "kqbr1/2pp1/5/1PP2/1NBQK w 0 1"},
		{"RankTooLong", "kqbnn1/2pp1/5/1PP2/1NBQK w 0 1"},
		{"RankTooShort", "kqb1/2pp1/5/1PP2/1NBQK w 0 1"},
		{"BadSide", "kqbn1/2pp1/5/1PP2/1NBQK x 0 1"},
		{"BadClock", "kqbn1/2pp1/5/1PP2/1NBQK w x 1"},
		{"TwoWhiteKings", "kqbn1/2pp1/5/1PP2/1NBKK w 0 1"},
		{"WhitePawnOnRank5", "Pqbn1/2pp1/5/1PP2/1NBQK w 0 1"},
		{"BlackPawnOnRank1", "kqbn1/2pp1/5/1PP2/pNBQK w 0 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFEN(tc.fen); err == nil {
				t.Errorf("ParseFEN(%q) should fail", tc.fen)
			}
		})
	}
}

// TestMissingKingFENAllowed: finished games have one king; their FENs must
// still load.
func TestMissingKingFENAllowed(t *testing.T) {
	pos, err := ParseFEN("q3k/5/5/5/5 w 0 9")
	if err != nil {
		t.Fatalf("FEN without a white king should parse: %v", err)
	}

	if !pos.MissingKing(White) {
		t.Errorf("MissingKing(White) = false, want true")
	}
	if pos.KingSquare[White] != NoSquare {
		t.Errorf("white king square = %v, want NoSquare", pos.KingSquare[White])
	}
	if pos.FullMoveNumber != 9 {
		t.Errorf("full move = %d, want 9", pos.FullMoveNumber)
	}
}

// TestHashDiffersBySideToMove: the same placement with a different mover
// hashes differently.
func TestHashDiffersBySideToMove(t *testing.T) {
	w, err := ParseFEN("kqbn1/2pp1/5/1PP2/1NBQK w 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	b, err := ParseFEN("kqbn1/2pp1/5/1PP2/1NBQK b 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	if w.Hash == b.Hash {
		t.Errorf("white-to-move and black-to-move hashes should differ")
	}
	if w.Hash != w.ComputeHash() || b.Hash != b.ComputeHash() {
		t.Errorf("parsed hashes should match recomputation")
	}
}
