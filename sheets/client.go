package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Dosada05/team-schedule/models"
	"github.com/Dosada05/team-schedule/repositories"
)

const (
	readRange  = "A1:I50"
	clearRange = "A1:Z100"
)

var (
	ErrNotConfigured = errors.New("spreadsheet mirror is not configured")
	ErrDisabled      = errors.New("spreadsheet mirror is disabled")
)

// SettingStore: откуда берётся и куда сохраняется id таблицы.
type SettingStore interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// SpreadsheetInfo: ссылка на внешнюю таблицу.
type SpreadsheetInfo struct {
	SpreadsheetID string `json:"spreadsheetId"`
	URL           string `json:"url"`
}

type ClientConfig struct {
	// SpreadsheetID, если задан, перекрывает значение из настроек.
	SpreadsheetID string
	// Title: название таблицы, создаваемой при первом обращении.
	Title string
}

// Client: зеркало расписания в Google Sheets.
type Client struct {
	service  *sheets.Service
	settings SettingStore
	title    string
	logger   *slog.Logger

	mu            sync.Mutex
	spreadsheetID string
}

// NewService создаёт Sheets API клиент. Приоритет: файл сервисного аккаунта, затем готовый access token.
func NewService(ctx context.Context, credentialsFile, accessToken string, clock clockwork.Clock) (*sheets.Service, *TokenCache, error) {
	var source oauth2.TokenSource
	switch {
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read google credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse google credentials: %w", err)
		}
		source = creds.TokenSource
	case accessToken != "":
		source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	default:
		return nil, nil, ErrNotConfigured
	}

	cache := NewTokenCache(source, clock)
	httpClient := &http.Client{Transport: &oauth2.Transport{Source: cache}}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return service, cache, nil
}

func NewClient(service *sheets.Service, settings SettingStore, cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		service:       service,
		settings:      settings,
		title:         cfg.Title,
		logger:        logger,
		spreadsheetID: cfg.SpreadsheetID,
	}
}

// ensureSpreadsheet возвращает id таблицы, создавая её при первом обращении.
func (c *Client) ensureSpreadsheet(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spreadsheetID != "" {
		return c.spreadsheetID, nil
	}

	setting, err := c.settings.Get(ctx, models.SettingSpreadsheetID)
	switch {
	case err == nil && setting.Value != "":
		c.spreadsheetID = setting.Value
		return c.spreadsheetID, nil
	case err != nil && !errors.Is(err, repositories.ErrSettingNotFound):
		return "", fmt.Errorf("failed to load spreadsheet id: %w", err)
	}

	created, err := c.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: c.title},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	if err := c.settings.Upsert(ctx, &models.Setting{Key: models.SettingSpreadsheetID, Value: created.SpreadsheetId}); err != nil {
		return "", fmt.Errorf("failed to store spreadsheet id: %w", err)
	}
	c.logger.Info("spreadsheet created", slog.String("spreadsheet_id", created.SpreadsheetId))

	c.spreadsheetID = created.SpreadsheetId
	return c.spreadsheetID, nil
}

// ReadTab читает вкладку недели и приводит все ячейки к строкам.
func (c *Client) ReadTab(ctx context.Context, tab string) ([][]string, error) {
	id, err := c.ensureSpreadsheet(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.service.Spreadsheets.Values.Get(id, tab+"!"+readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %s: %w", tab, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteTab полностью перезаписывает вкладку: создаёт её при необходимости, очищает и пишет с A1.
// Оформление накладывается после записи и на результат не влияет.
func (c *Client) WriteTab(ctx context.Context, tab string, rows [][]string) error {
	id, err := c.ensureSpreadsheet(ctx)
	if err != nil {
		return err
	}

	sheetID, err := c.ensureTab(ctx, id, tab)
	if err != nil {
		return err
	}

	if _, err := c.service.Spreadsheets.Values.Clear(id, tab+"!"+clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear tab %s: %w", tab, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	_, err = c.service.Spreadsheets.Values.Update(id, tab+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write tab %s: %w", tab, err)
	}

	if err := c.format(ctx, id, sheetID, len(rows)); err != nil {
		c.logger.Warn("failed to format spreadsheet tab", slog.String("tab", tab), slog.Any("error", err))
	}
	return nil
}

// SpreadsheetInfo: id и адрес таблицы.
func (c *Client) SpreadsheetInfo(ctx context.Context) (SpreadsheetInfo, error) {
	id, err := c.ensureSpreadsheet(ctx)
	if err != nil {
		return SpreadsheetInfo{}, err
	}
	return SpreadsheetInfo{SpreadsheetID: id, URL: SpreadsheetURL(id)}, nil
}

func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

func (c *Client) ensureTab(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("cannot access spreadsheet: %w", err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to create tab %s: %w", tab, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("unexpected response from create tab %s", tab)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// format: объединённый заголовок, цветная шапка, закреплённые строки и выпадающие списки в ячейках дней.
func (c *Client) format(ctx context.Context, spreadsheetID string, sheetID int64, rowCount int) error {
	titleRange := &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: columnCount}
	headerRange := &sheets.GridRange{SheetId: sheetID, StartRowIndex: 2, EndRowIndex: 3, StartColumnIndex: 0, EndColumnIndex: columnCount}

	requests := []*sheets.Request{
		{MergeCells: &sheets.MergeCellsRequest{Range: titleRange, MergeType: "MERGE_ALL"}},
		{RepeatCell: &sheets.RepeatCellRequest{
			Range: titleRange,
			Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
				TextFormat:          &sheets.TextFormat{Bold: true, FontSize: 14},
				HorizontalAlignment: "CENTER",
			}},
			Fields: "userEnteredFormat(textFormat,horizontalAlignment)",
		}},
		{RepeatCell: &sheets.RepeatCellRequest{
			Range: headerRange,
			Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
				BackgroundColor: &sheets.Color{Red: 0.29, Green: 0.33, Blue: 0.91},
				TextFormat: &sheets.TextFormat{
					Bold:            true,
					ForegroundColor: &sheets.Color{Red: 1, Green: 1, Blue: 1},
				},
				HorizontalAlignment: "CENTER",
			}},
			Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
		}},
		{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: headerRows},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
	}

	if rowCount > headerRows {
		options := make([]*sheets.ConditionValue, 0, len(models.AvailabilityOptions))
		for _, o := range models.AvailabilityOptions {
			options = append(options, &sheets.ConditionValue{UserEnteredValue: string(o)})
		}
		requests = append(requests, &sheets.Request{SetDataValidation: &sheets.SetDataValidationRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    headerRows,
				EndRowIndex:      int64(rowCount),
				StartColumnIndex: 2,
				EndColumnIndex:   columnCount,
			},
			Rule: &sheets.DataValidationRule{
				Condition:    &sheets.BooleanCondition{Type: "ONE_OF_LIST", Values: options},
				ShowCustomUi: true,
			},
		}})
	}

	_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	return err
}

// Disabled: зеркало без учётных данных: чтение всегда падает (и деградирует в пустое
// расписание), запись пропускается.
type Disabled struct{}

func (Disabled) ReadTab(context.Context, string) ([][]string, error) {
	return nil, ErrDisabled
}

func (Disabled) WriteTab(context.Context, string, [][]string) error {
	return nil
}

func (Disabled) SpreadsheetInfo(context.Context) (SpreadsheetInfo, error) {
	return SpreadsheetInfo{}, ErrDisabled
}
