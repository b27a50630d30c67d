package notes

import "github.com/JhonEdwinVR/Meet-recording-Notes/pkg/transcribe"

// Labels are the section headings of rendered notes.
type Labels struct {
	KeySummary     string
	ActionItems    string
	FullTranscript string
	Recording      string
}

var labels = map[transcribe.Language]Labels{
	transcribe.English: {
		KeySummary:     "Key Summary",
		ActionItems:    "Action Items",
		FullTranscript: "Full Transcript",
		Recording:      "Recording",
	},
	transcribe.Spanish: {
		KeySummary:     "Resumen Clave",
		ActionItems:    "Puntos de Acción",
		FullTranscript: "Transcripción Completa",
		Recording:      "Grabación",
	},
	transcribe.French: {
		KeySummary:     "Résumé Clé",
		ActionItems:    "Actions à Entreprendre",
		FullTranscript: "Transcription Complète",
		Recording:      "Enregistrement",
	},
	transcribe.German: {
		KeySummary:     "Wichtige Zusammenfassung",
		ActionItems:    "Aktionspunkte",
		FullTranscript: "Vollständiges Transkript",
		Recording:      "Aufnahme",
	},
	transcribe.Japanese: {
		KeySummary:     "主な概要",
		ActionItems:    "アクションアイテム",
		FullTranscript: "完全な文字起こし",
		Recording:      "録音",
	},
}

// LabelsFor returns headings in lang, falling back to English.
func LabelsFor(lang transcribe.Language) Labels {
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[transcribe.English]
}
