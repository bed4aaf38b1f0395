package story

// Node ids.
const (
	NodeIntro      = "intro"
	NodeConsole    = "console"
	NodeDrunkShack = "drunk_shack"

	NodeKennelIntro = "kennel_intro"
	NodeKennelWatch = "kennel_watch"
	NodeKennelTest  = "kennel_test"

	NodeLabIntro = "lab_intro"
	NodeLabMenu  = "lab_menu"
	NodeLabSim   = "lab_sim"
	NodeLabAuto  = "lab_auto"

	NodeLogsIntro  = "logs_intro"
	NodeLogsRecent = "logs_recent"
	NodeLogsHab03  = "logs_hab03"
	NodeLogsKennel = "logs_kennel"

	NodeGenIntro    = "gen_intro"
	NodeGenRoutes   = "gen_routes"
	NodeGenLoadTest = "gen_loadtest"
	NodeGenLock     = "gen_lock"

	NodeChessIntro     = "chess_intro"
	NodeChessBishop    = "chess_b_n4"
	NodeChessKing      = "chess_k_r1"
	NodeChessCheckmate = "chess_checkmate"
	NodeChessStare     = "chess_stare"
	NodeChessWhiskey   = "chess_whiskey"
	NodeChessOffline   = "chess_offline"

	NodeFinalAssessment = "final_assessment"
	NodeEndingSuccess   = "ending_containment_success"
	NodeEndingFailure   = "ending_containment_failure"
)

// bloodTestPrefix + crew id names a blood-test screen.
const bloodTestPrefix = "lab_test_"

// BloodTestNode returns the test screen id for a crew member.
func BloodTestNode(crewID string) string {
	return bloodTestPrefix + crewID
}

// Story-only note tags. Mechanically significant tags live in the engine.
const (
	noteWentToShack         = "went_to_shack"
	noteKennelIsolated      = "kennel_isolated"
	noteVerificationRequest = "verification_requested"
	noteChessWizardRuined   = "chess_wizard_ruined"
)
