package app

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"yashubustudio/symptomcheck/diagnostic"
	"yashubustudio/symptomcheck/internal/i18n"
	"yashubustudio/symptomcheck/internal/logger"
)

const headerRowHeight = 32

type uiState struct {
	service *diagnostic.Service
	i18n    *i18n.Manager
	logger  *zap.SugaredLogger
	topK    int
	lang    string
	columns diagnostic.ColumnCandidates

	w          fyne.Window
	input      *widget.Entry
	log        *widget.Entry
	details    *widget.Label
	status     *widget.Label
	progress   *widget.ProgressBar
	kbSummary  *widget.Label
	resTbl     *widget.Table
	langSelect *widget.Select

	inputLabel    *widget.Label
	progressLabel *widget.Label
	logLabel      *widget.Label
	detailsLabel  *widget.Label
	languageLabel *widget.Label

	statusBind   binding.String
	logBind      binding.String
	progressBind binding.Float

	// touched on the UI goroutine only
	loaded  []diagnostic.InputRecord
	records []diagnostic.InputRecord
	rows    []diagnostic.ResultRow
	data    [][]string

	diagnoseBtn *widget.Button
	exportBtn   *widget.Button
	loadBtn     *widget.Button
}

func buildUI(a fyne.App, svc *diagnostic.Service, manager *i18n.Manager, log *zap.SugaredLogger, capture *logCapture) *uiState {
	cfg := svc.Config()
	u := &uiState{
		service: svc,
		i18n:    manager,
		logger:  log,
		topK:    cfg.TopK,
		columns: cfg.Columns,
		lang:    manager.NormalizeLanguage(cfg.Language),
	}
	u.w = a.NewWindow(u.t("ui.title"))

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set(u.t("ui.status_ready"))
	u.progressBind = binding.NewFloat()
	u.logBind = binding.NewString()

	u.input = widget.NewMultiLineEntry()
	u.input.SetPlaceHolder(u.t("ui.input_placeholder"))
	u.input.Wrapping = fyne.TextWrapWord

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.Disable()
	capture.attach(func(text string) { _ = u.logBind.Set(text) })

	u.details = widget.NewLabel("")
	u.details.Wrapping = fyne.TextWrapWord
	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarWithData(u.progressBind)
	u.progress.Hide()
	u.kbSummary = widget.NewLabel("")

	u.diagnoseBtn = widget.NewButtonWithIcon(u.t("ui.diagnose"), theme.ConfirmIcon(), func() { u.onDiagnose() })
	u.exportBtn = widget.NewButtonWithIcon(u.t("ui.export_csv"), theme.DocumentSaveIcon(), func() { u.onExport() })
	u.loadBtn = widget.NewButtonWithIcon(u.t("ui.load_file"), theme.FolderOpenIcon(), func() { u.onLoadFile() })

	u.languageLabel = widget.NewLabel(u.t("ui.language"))
	u.langSelect = widget.NewSelect(manager.SupportedLanguages(), nil)
	u.langSelect.SetSelected(u.lang)
	u.langSelect.OnChanged = func(lang string) { u.setLanguage(lang) }

	u.inputLabel = boldLabel(u.t("ui.input_label"))
	u.progressLabel = boldLabel(u.t("ui.progress"))
	u.logLabel = boldLabel(u.t("ui.log"))
	u.detailsLabel = boldLabel(u.t("ui.details"))

	u.data = buildTableData(manager, u.lang, nil, nil, u.topK)
	u.resTbl = widget.NewTable(
		func() (int, int) {
			return len(u.data), len(u.data[0])
		},
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Wrapping = fyne.TextWrapWord
			return lbl
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row >= len(u.data) || id.Col >= len(u.data[id.Row]) {
				lbl.SetText("")
				return
			}
			if id.Row == 0 {
				lbl.Alignment = fyne.TextAlignCenter
				lbl.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				lbl.Alignment = fyne.TextAlignLeading
				lbl.TextStyle = fyne.TextStyle{}
			}
			lbl.SetText(u.data[id.Row][id.Col])
		},
	)
	u.resTbl.OnSelected = func(id widget.TableCellID) { u.showDetails(id.Row - 1) }
	u.applyColumnWidths()

	controls := container.NewGridWithColumns(3, u.diagnoseBtn, u.loadBtn, u.exportBtn)
	langRow := container.NewBorder(nil, nil, u.languageLabel, nil, u.langSelect)
	left := container.NewVBox(
		u.inputLabel,
		container.NewGridWrap(fyne.NewSize(380, 220), u.input),
		controls,
		langRow,
		widget.NewSeparator(),
		u.progressLabel,
		u.progress,
		u.status,
		u.kbSummary,
		widget.NewSeparator(),
		u.logLabel,
		container.NewGridWrap(fyne.NewSize(380, 200), u.log),
	)
	right := container.NewVSplit(
		u.resTbl,
		container.NewBorder(u.detailsLabel, nil, nil, nil, container.NewVScroll(u.details)),
	)
	right.Offset = 0.7
	split := container.NewHSplit(left, right)
	split.Offset = 0.3

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1280, 780))
	u.updateKnowledgeSummary()
	return u
}

func boldLabel(text string) *widget.Label {
	return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
}

func (u *uiState) t(key string) string {
	return u.i18n.Translate(u.lang, key)
}

func (u *uiState) tf(key string, args ...any) string {
	return u.i18n.Translatef(u.lang, key, args...)
}

func (u *uiState) applyColumnWidths() {
	for i, width := range columnWidths(u.topK) {
		u.resTbl.SetColumnWidth(i, width)
	}
	u.resTbl.SetRowHeight(0, headerRowHeight)
}

func (u *uiState) refreshTable() {
	u.data = buildTableData(u.i18n, u.lang, u.records, u.rows, u.topK)
	u.resTbl.Refresh()
}

func (u *uiState) setLanguage(lang string) {
	lang = u.i18n.NormalizeLanguage(lang)
	if lang == u.lang {
		return
	}
	u.lang = lang
	u.w.SetTitle(u.t("ui.title"))
	u.input.SetPlaceHolder(u.t("ui.input_placeholder"))
	u.diagnoseBtn.SetText(u.t("ui.diagnose"))
	u.exportBtn.SetText(u.t("ui.export_csv"))
	u.loadBtn.SetText(u.t("ui.load_file"))
	u.languageLabel.SetText(u.t("ui.language"))
	u.inputLabel.SetText(u.t("ui.input_label"))
	u.progressLabel.SetText(u.t("ui.progress"))
	u.logLabel.SetText(u.t("ui.log"))
	u.detailsLabel.SetText(u.t("ui.details"))
	u.details.SetText("")
	u.updateKnowledgeSummary()
	u.refreshTable()
	u.logger.Debugw("language changed", "language", lang)
}

func (u *uiState) updateKnowledgeSummary() {
	kb := u.service.KnowledgeBase()
	u.kbSummary.SetText(u.tf("ui.knowledge_summary", kb.SymptomCount(), kb.ConditionCount()))
}

func (u *uiState) showDetails(idx int) {
	if idx < 0 || idx >= len(u.rows) {
		u.details.SetText("")
		return
	}
	u.details.SetText(formatResultDetails(u.i18n, u.lang, u.rows[idx]))
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		if b {
			u.diagnoseBtn.Disable()
			u.exportBtn.Disable()
			u.loadBtn.Disable()
		} else {
			u.diagnoseBtn.Enable()
			u.exportBtn.Enable()
			u.loadBtn.Enable()
		}
	})
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) configureProgress(min, max float64) {
	fyne.Do(func() {
		u.progress.Min = min
		u.progress.Max = max
	})
}

func (u *uiState) setProgressValue(value float64) {
	_ = u.progressBind.Set(value)
}

func (u *uiState) showProgress() {
	fyne.Do(func() { u.progress.Show() })
}

func (u *uiState) hideProgress() {
	fyne.Do(func() { u.progress.Hide() })
}

func (u *uiState) showError(err error) {
	if err == nil {
		return
	}
	u.logger.Errorw("ui action failed", logger.FieldError, err)
	fyne.Do(func() { dialog.ShowError(err, u.w) })
}

func (u *uiState) onDiagnose() {
	records := recordsFromInput(u.input.Text, u.loaded)
	if len(records) == 0 {
		dialog.ShowInformation(u.t("ui.info_title"), u.t("ui.empty_input"), u.w)
		return
	}
	total := len(records)
	u.configureProgress(0, float64(total))
	u.setProgressValue(0)
	u.showProgress()
	u.setStatus(u.tf("ui.status_running", 0, total))
	u.setBusy(true)
	u.logger.Infow("diagnosis started", logger.FieldCount, total)
	start := time.Now()

	go func(records []diagnostic.InputRecord) {
		rows, err := u.service.DiagnoseAll(context.Background(), recordTexts(records), func(done, total int) {
			u.setProgressValue(float64(done))
			u.setStatus(u.tf("ui.status_running", done, total))
		})
		u.setBusy(false)
		u.hideProgress()
		if err != nil {
			u.setStatus(u.t("ui.error_title"))
			u.showError(errors.Wrap(err, "diagnose"))
			return
		}
		fyne.Do(func() {
			u.records = records
			u.rows = rows
			u.details.SetText("")
			u.resTbl.UnselectAll()
			u.refreshTable()
		})
		u.setStatus(u.tf("ui.status_done", len(rows)))
		u.logger.Infow("diagnosis finished",
			logger.FieldCount, len(rows),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
	}(records)
}

func (u *uiState) onExport() {
	if len(u.rows) == 0 {
		dialog.ShowInformation(u.t("ui.info_title"), u.t("ui.nothing_to_export"), u.w)
		return
	}
	records, rows, topK := u.records, u.rows, u.topK
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if uc == nil {
			return
		}
		writeErr := diagnostic.WriteResultCSV(uc, records, rows, topK)
		closeErr := uc.Close()
		if writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			u.showError(errors.Wrapf(writeErr, "export %s", uc.URI().Name()))
			return
		}
		u.setStatus(u.tf("ui.status_exported", uc.URI().Name()))
		u.logger.Infow("results exported", "file", uc.URI().Path(), logger.FieldCount, len(rows))
	}, u.w)
	fd.SetFileName("results.csv")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}

func (u *uiState) onLoadFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()

		meta, err := diagnostic.ReadInputFileMetadata(path, u.columns)
		if err != nil {
			u.showError(err)
			return
		}
		if len(meta.Columns) > 1 {
			u.chooseColumns(path, meta)
			return
		}
		u.loadRecords(path, diagnostic.InputParseOptions{Candidates: u.columns})
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".csv", ".tsv"}))
	fd.Show()
}

// chooseColumns lets the user confirm which columns hold the symptoms and the
// patient, preselecting what auto-detection found.
func (u *uiState) chooseColumns(path string, meta diagnostic.InputFileMetadata) {
	textSelect := widget.NewSelect(meta.Columns, nil)
	if meta.Suggested.TextColumn != "" {
		textSelect.SetSelected(meta.Suggested.TextColumn)
	} else {
		textSelect.SetSelectedIndex(0)
	}
	patientOptions := append([]string{"-"}, meta.Columns...)
	patientSelect := widget.NewSelect(patientOptions, nil)
	if meta.Suggested.PatientColumn != "" {
		patientSelect.SetSelected(meta.Suggested.PatientColumn)
	} else {
		patientSelect.SetSelectedIndex(0)
	}
	form := widget.NewForm(
		widget.NewFormItem(u.t("ui.col_text_source"), textSelect),
		widget.NewFormItem(u.t("ui.col_patient_source"), patientSelect),
	)
	dialog.NewCustomConfirm(u.t("ui.choose_columns"), u.t("ui.load"), u.t("ui.cancel"), form, func(ok bool) {
		if !ok {
			return
		}
		opts := diagnostic.InputParseOptions{
			IndexColumn: meta.Suggested.IndexColumn,
			TextColumn:  columnSelector(textSelect.SelectedIndex(), 0),
			Candidates:  u.columns,
		}
		if idx := patientSelect.SelectedIndex(); idx > 0 {
			opts.PatientColumn = columnSelector(idx-1, -1)
		}
		u.loadRecords(path, opts)
	}, u.w).Show()
}

// columnSelector addresses a column by position so duplicate header names stay unambiguous.
func columnSelector(idx, fallback int) string {
	if idx < 0 {
		idx = fallback
	}
	if idx < 0 {
		return ""
	}
	return "#" + strconv.Itoa(idx+1)
}

func (u *uiState) loadRecords(path string, opts diagnostic.InputParseOptions) {
	records, err := diagnostic.ParseInputRecordsWithOptions(path, opts)
	if err != nil {
		u.showError(err)
		return
	}
	texts := recordTexts(records)
	for i, text := range texts {
		texts[i] = strings.ReplaceAll(text, "\n", " ")
		records[i].Text = texts[i]
	}
	u.loaded = records
	u.input.SetText(strings.Join(texts, "\n"))
	u.setStatus(u.tf("ui.loaded", len(records), filepath.Base(path)))
	u.logger.Infow("input file loaded", "file", path, logger.FieldCount, len(records))
}
