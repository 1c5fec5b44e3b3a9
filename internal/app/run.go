package app

import (
	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/cockroachdb/errors"

	"yashubustudio/symptomcheck/diagnostic"
	"yashubustudio/symptomcheck/internal/i18n"
	"yashubustudio/symptomcheck/internal/logger"
)

const fyneAppID = "yashubustudio.symptomcheck"

// Run loads the configuration from the working directory and starts the desktop UI.
func Run() error {
	cfg, err := diagnostic.LoadConfig("")
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	base, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	capture := newLogCapture(logCaptureLimit)
	log := teeToCapture(base, capture, level)
	defer logger.Sync(log)

	manager, err := i18n.NewManager(cfg.Language)
	if err != nil {
		return errors.Wrap(err, "init i18n")
	}

	a := fyneapp.NewWithID(fyneAppID)
	kb, err := diagnostic.LoadKnowledgeBase(cfg)
	if err != nil {
		log.Errorw("load knowledge base", logger.FieldError, err)
		w := a.NewWindow(manager.Translate(cfg.Language, "ui.title"))
		showFatalError(w, errors.Wrap(err, "load knowledge base"))
		return nil
	}
	svc := diagnostic.NewService(kb, cfg, log)
	log.Infow("knowledge base loaded",
		"symptoms", kb.SymptomCount(),
		"conditions", kb.ConditionCount(),
		"path", cfg.KnowledgeBasePath)

	u := buildUI(a, svc, manager, log.With(logger.FieldComponent, "ui"), capture)
	u.w.ShowAndRun()
	return nil
}

func showFatalError(win fyne.Window, err error) {
	win.SetContent(widget.NewLabel(err.Error()))
	win.Resize(fyne.NewSize(640, 200))
	dialog.ShowError(err, win)
	win.ShowAndRun()
}
