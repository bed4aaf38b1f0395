package story

import (
	"github.com/outpost31/simulator/internal/engine"
	"github.com/outpost31/simulator/internal/platform/locale"
)

const chessIntroText = `
CHESS WIZARD v1.0

BOARD STATE LOADED.
OPPONENT READY.

MAKE A MOVE:
`

const chessBishopText = `
MOVE REGISTERED:
BISHOP TO KNIGHT 4.

THE COMPUTER RESPONDS IMMEDIATELY.

KNIGHT TO ROOK 3.

NO HESITATION.
NO EVALUATION DELAY.

YOU CAN FEEL IT:
THE POSITION IS CLOSING.
`

const chessKingText = `
MOVE REGISTERED:
KING TO ROOK 1.

THE COMPUTER PAUSES.
JUST LONG ENOUGH TO BE INSULTING.

ROOK TO KNIGHT 6.

CHECK.

YOU THINK:
"POOR BABY. YOU'RE STARTING TO LOSE IT, AREN'T YA?"
`

const chessCheckmateText = `
THE COMPUTER MAKES ITS MOVE.

ROOK TO KNIGHT 6.

CHECKMATE.
CHECKMATE.

IT ISN'T BRAGGING.
IT'S A FORECAST.

YOU MUTTER:
"YOU CHEATING BITCH."
`

const chessStareText = `
THE CURSOR STOPS BLINKING.

FOR A MOMENT, THE BOARD LOOKS WRONG.
NOT CHESS. NOT EVEN GAMES.

THEN IT'S NORMAL AGAIN.

NORMAL DOESN'T HELP.
`

const chessWhiskeyText = `
YOU UNSCREW THE CAP.

THE LIQUID HITS THE KEYS.
THE SCREEN GOES BLACK MID-WORD.

NO SHUTDOWN SEQUENCE.
NO ERROR REPORT.

JUST SILENCE.
`

const chessOfflineText = `
CHESS WIZARD: OFFLINE

STATUS: LIQUID DAMAGE
REPAIR: NOT SCHEDULED
PRIORITY: NON-ESSENTIAL
`

func addChessNodes(g *Graph) {
	quit := Choice{Label: locale.T("QUIT CHESS WIZARD"), Next: NodeConsole}
	back := Choice{Label: locale.T("RETURN TO CONSOLE"), Next: NodeConsole}
	cont := Choice{Label: locale.T("CONTINUE"), Next: NodeChessCheckmate}

	g.Add(&Node{
		ID:   NodeChessIntro,
		Text: locale.T(chessIntroText),
		Choices: []Choice{
			{Label: locale.T("BISHOP TO KNIGHT 4 (ASSERTIVE POSITIONING)"), Next: NodeChessBishop, Effect: addCaution},
			{Label: locale.T("KING TO ROOK 1 (CONSERVATIVE WITHDRAWAL)"), Next: NodeChessKing, Effect: addCaution},
			quit,
		},
	})

	g.Add(&Node{ID: NodeChessBishop, Text: locale.T(chessBishopText), Choices: []Choice{cont, quit}})
	g.Add(&Node{ID: NodeChessKing, Text: locale.T(chessKingText), Choices: []Choice{cont, quit}})

	g.Add(&Node{
		ID:   NodeChessCheckmate,
		Text: locale.T(chessCheckmateText),
		Choices: []Choice{
			{Label: locale.T("POUR WHISKEY ON THE COMPUTER"), Next: NodeChessWhiskey, Effect: func(e *engine.Engine) {
				s := e.State()
				s.Paranoia = max(0, s.Paranoia-1)
				e.RaiseRisk(1)
				e.AddNote(noteChessWizardRuined)
				e.Log("NON-ESSENTIAL SYSTEM TERMINATED BY OPERATOR.")
			}},
			{Label: locale.T("STARE AT THE BOARD"), Next: NodeChessStare, Effect: func(e *engine.Engine) {
				e.State().Paranoia++
			}},
			back,
		},
	})

	g.Add(&Node{ID: NodeChessStare, Text: locale.T(chessStareText), Choices: []Choice{back}})
	g.Add(&Node{ID: NodeChessWhiskey, Text: locale.T(chessWhiskeyText), Choices: []Choice{back}})
	g.Add(&Node{ID: NodeChessOffline, Text: locale.T(chessOfflineText), Choices: []Choice{back}})
}
