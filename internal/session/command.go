package session

// Command represents a message from the attacker's client to the session.
type Command interface {
	command()
}

// DeployUnitCmd places one unit of the given kind at a battlefield position.
// Only valid during setup.
type DeployUnitCmd struct {
	Kind string
	Row  float64
	Col  float64
}

func (DeployUnitCmd) command() {}

// StartBattleCmd begins the simulation. Requires at least one deployed unit.
type StartBattleCmd struct{}

func (StartBattleCmd) command() {}

// EndBattleCmd ends the battle early, keeping whatever destruction and loot
// was earned so far.
type EndBattleCmd struct{}

func (EndBattleCmd) command() {}

// DisconnectCmd tells the session its participant went away.
type DisconnectCmd struct{}

func (DisconnectCmd) command() {}
