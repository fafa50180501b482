package labels

// Action names a row or sheet command offered by a front end.
type Action string

const (
	ActionStart     Action = "start"
	ActionCopy      Action = "copy"
	ActionExpand    Action = "expand"
	ActionDelete    Action = "delete"
	ActionSave      Action = "save"
	ActionDeleteAll Action = "delete_all"
	ActionDownload  Action = "download"
	ActionLanguage  Action = "lang"
)

// Actions lists the commands in toolbar order.
func Actions() []Action {
	return []Action{
		ActionStart,
		ActionCopy,
		ActionExpand,
		ActionDelete,
		ActionSave,
		ActionDeleteAll,
		ActionDownload,
		ActionLanguage,
	}
}

var captions = map[Language]map[Action]string{
	German: {
		ActionStart:     "Start",
		ActionCopy:      "Kopieren",
		ActionExpand:    "Expandieren",
		ActionDelete:    "Löschen",
		ActionSave:      "Speichern",
		ActionDeleteAll: "Alles löschen",
		ActionDownload:  "Download (Excel)",
	},
	English: {
		ActionStart:     "Start",
		ActionCopy:      "Copy",
		ActionExpand:    "Expand",
		ActionDelete:    "Delete",
		ActionSave:      "Save",
		ActionDeleteAll: "Delete All",
		ActionDownload:  "Download (Excel)",
	},
}

// Caption returns the button text of an action. The language toggle shows the
// language it switches to.
func Caption(lang Language, a Action) string {
	if a == ActionLanguage {
		return lang.Other().Upper()
	}
	if c, ok := captions[lang][a]; ok {
		return c
	}
	if c, ok := captions[Default][a]; ok {
		return c
	}
	return string(a)
}
