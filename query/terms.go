package query

// abbreviations maps whole-token game shorthand to its expansion.
// Applied before spelling correction so "ac" never reaches the corrector.
var abbreviations = map[string]string{
	"ac":  "armor class",
	"hp":  "hit points",
	"mp":  "magic points",
	"pc":  "player character",
	"npc": "non-player character",
	"dm":  "dungeon master",
	"gm":  "game master",
	"cr":  "challenge rating",
	"xp":  "experience points",
	"str": "strength",
	"dex": "dexterity",
	"con": "constitution",
	"int": "intelligence",
	"wis": "wisdom",
	"cha": "charisma",
	"phb": "players handbook",
	"dmg": "dungeon masters guide",
	"mm":  "monster manual",
	"aoo": "attack of opportunity",
}

// synonyms lists expansion terms added at reduced weight for salient query
// tokens.
var synonyms = map[string][]string{
	"damage":    {"harm", "injury", "hurt"},
	"armor":     {"defense", "protection"},
	"spell":     {"magic", "cantrip", "incantation", "ritual"},
	"weapon":    {"sword", "bow", "blade"},
	"monster":   {"creature", "enemy", "foe", "beast"},
	"character": {"hero", "protagonist"},
	"skill":     {"ability", "proficiency", "talent"},
	"save":      {"resistance", "check"},
	"roll":      {"dice", "check", "throw"},
	"level":     {"tier", "rank"},
	"class":     {"profession", "archetype"},
	"race":      {"species", "ancestry", "heritage"},
	"health":    {"life", "vitality"},
}

// statMarkers are tokens whose presence signals a stat lookup. Abbreviations
// are expanded before intent detection, so only long forms appear here.
var statMarkers = map[string]bool{
	"strength": true, "dexterity": true, "constitution": true,
	"intelligence": true, "wisdom": true, "charisma": true,
	"stats": true, "stat": true, "statistics": true,
	"damage": true, "dice": true, "modifier": true,
}
