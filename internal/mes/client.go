// Package mes is the authenticated client for the QFactory MES HTTP API.
//
// All calls are synchronous JSON POSTs over a cookie-authenticated session
// established by Login. Responses follow the MES envelope convention: a
// top-level object with a success flag, an operator-facing msg, and the
// payload under data (lists one level deeper under data.list).
package mes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Per-call deadlines. Login is quicker to give the operator fast feedback on
// bad credentials; data calls get headroom for slow MES list queries.
const (
	loginTimeout = 10 * time.Second
	dataTimeout  = 15 * time.Second
)

// MES endpoint paths.
const (
	loginPath           = "/common/login/post-login"
	warehouseListPath   = "/inv/warehouse/list"
	stockDetailPath     = "/inv/stock-onhand-lot/detail-list"
	transferListPath    = "/inv/stock-transfer-warehouse/list"
	transferLotListPath = "/inv/stock-transfer-warehouse/lot-list"
	transferSavePath    = "/inv/stock-transfer-warehouse/save"
	transferDoPath      = "/inv/stock-transfer-warehouse/transfer"
)

const languageCode = "KO"

// Profile is the user/organization identity captured at login, used to fill
// the company fields every subsequent call requires.
type Profile struct {
	CompanyID   int64  `json:"company_id"`
	PlantID     int64  `json:"plant_id"`
	CompanyCode string `json:"company_code"`
	CompanyName string `json:"company_name"`
	UserName    string `json:"user_name"`
}

// Client talks to one MES instance on behalf of one operator session.
// Session cookies live in the client's cookie jar; a Client is not usable
// for data calls until Login has succeeded.
type Client struct {
	baseURL     string
	origin      string
	companyCode string
	http        *http.Client
	profile     *Profile
}

// NewClient creates an unauthenticated client for the MES at baseURL.
// companyCode is the tenant the login call authenticates against.
func NewClient(baseURL, companyCode string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid MES base URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	// The MES web UI sends Origin/Referer without the API port.
	origin := parsed.Scheme + "://" + parsed.Hostname()

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		origin:      origin,
		companyCode: companyCode,
		http:        &http.Client{Jar: jar},
	}, nil
}

// Authenticated reports whether Login has succeeded on this client.
func (c *Client) Authenticated() bool {
	return c.profile != nil
}

// Profile returns the identity captured at login.
func (c *Client) Profile() Profile {
	if c.profile == nil {
		return Profile{}
	}
	return *c.profile
}

// Login authenticates against the MES. On success the session cookies are
// retained in the client and the user/organization profile is captured.
func (c *Client) Login(ctx context.Context, userKey, password string) error {
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	body, err := c.do(ctx, loginPath, map[string]any{
		"companyCode":  c.companyCode,
		"userKey":      userKey,
		"password":     password,
		"languageCode": languageCode,
	})
	if err != nil {
		return err
	}

	var userInfo struct {
		UserName    string `json:"userName"`
		CompanyID   int64  `json:"companyId"`
		PlantID     int64  `json:"plantId"`
		CompanyCode string `json:"companyCode"`
		CompanyName string `json:"companyName"`
	}
	if raw, ok := body["userInfo"]; ok {
		if err := json.Unmarshal(raw, &userInfo); err != nil {
			return &RemoteError{Endpoint: loginPath, Status: http.StatusOK,
				Msg: "malformed login response", Body: string(raw)}
		}
	}

	profile := Profile{
		CompanyID:   userInfo.CompanyID,
		PlantID:     userInfo.PlantID,
		CompanyCode: userInfo.CompanyCode,
		CompanyName: userInfo.CompanyName,
		UserName:    userInfo.UserName,
	}
	if profile.CompanyCode == "" {
		profile.CompanyCode = c.companyCode
	}
	c.profile = &profile

	slog.Info("logged in to MES", "user", userKey, "company", profile.CompanyCode)
	return nil
}

// Post sends an authenticated data call and returns the normalized response
// object. It fails fast with ErrNotAuthenticated before login.
func (c *Client) Post(ctx context.Context, path string, payload any) (map[string]json.RawMessage, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, dataTimeout)
	defer cancel()
	return c.do(ctx, path, payload)
}

// do performs one JSON POST and normalizes the MES envelope: HTTP status
// >= 400 is a transport failure carrying the body, a non-object body is
// malformed, and success=false is a business rejection carrying msg.
func (c *Client) do(ctx context.Context, path string, payload any) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Referer", c.origin+"/")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		slog.Error("MES request failed", "path", path, "status", resp.StatusCode, "body", string(body))
		return nil, &RemoteError{
			Endpoint: path,
			Status:   resp.StatusCode,
			Msg:      remoteDetail(body),
			Body:     string(body),
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		slog.Error("malformed MES response", "path", path, "body", string(body))
		return nil, &RemoteError{
			Endpoint: path,
			Status:   resp.StatusCode,
			Msg:      "malformed MES response",
			Body:     string(body),
		}
	}

	if raw, ok := obj["success"]; ok {
		var success bool
		if err := json.Unmarshal(raw, &success); err == nil && !success {
			slog.Error("MES rejected request", "path", path, "body", string(body))
			msg := "MES request failed"
			var remoteMsg string
			if m, ok := obj["msg"]; ok && json.Unmarshal(m, &remoteMsg) == nil && remoteMsg != "" {
				msg = remoteMsg
			}
			return nil, &RemoteError{Endpoint: path, Msg: msg, Body: string(body)}
		}
	}

	return obj, nil
}

// remoteDetail extracts a printable error detail from an HTTP error body,
// preferring structured JSON over raw text.
func remoteDetail(body []byte) string {
	var detail any
	if err := json.Unmarshal(body, &detail); err == nil {
		if compact, err := json.Marshal(detail); err == nil {
			return string(compact)
		}
	}
	return strings.TrimSpace(string(body))
}

// listData unwraps the data.list layer of a list response. A null or absent
// data field yields an empty list.
func listData(obj map[string]json.RawMessage) []json.RawMessage {
	raw, ok := obj["data"]
	if !ok {
		return nil
	}
	var inner struct {
		List []json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil
	}
	return inner.List
}

// Warehouses fetches the warehouse master list. The MES pages this endpoint;
// a single page of 100 covers every known deployment.
func (c *Client) Warehouses(ctx context.Context) ([]Warehouse, error) {
	profile := c.Profile()
	payload := map[string]any{
		"languageCode":             languageCode,
		"companyId":                profile.CompanyID,
		"plantId":                  profile.PlantID,
		"enabledFlag":              "",
		"warehouseCode":            "",
		"warehouseName":            "",
		"warehouseType":            "",
		"outsideFlag":              "",
		"partnerCode":              "",
		"partnerName":              "",
		"availableForLocationFlag": "",
		"poReceivingFlag":          "",
		"wipProductionFlag":        "",
		"shipmentInspectionFlag":   "",
		"defectiveStockFlag":       "",
		"wipProcessingFlag":        "",
		"managementType":           "",
		"inventoryAssetFlag":       "",
		"start":                    1,
		"page":                     1,
		"limit":                    100,
	}

	obj, err := c.Post(ctx, warehouseListPath, payload)
	if err != nil {
		return nil, err
	}

	var warehouses []Warehouse
	for _, raw := range listData(obj) {
		var w Warehouse
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decoding warehouse row: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, nil
}

// StockOnhandRows queries on-hand lots by lot and warehouse code. The item
// code is deliberately left blank: the lot code alone is selective enough,
// and constraining the item too can drop valid rows on the MES side.
func (c *Client) StockOnhandRows(ctx context.Context, lotCode, warehouseCode string) ([]StockRow, error) {
	profile := c.Profile()
	payload := map[string]any{
		"languageCode":          languageCode,
		"companyId":             profile.CompanyID,
		"plantId":               profile.PlantID,
		"itemCode":              "",
		"itemName":              "",
		"itemType":              "",
		"projectCode":           "",
		"projectName":           "",
		"productGroup":          "",
		"itemClass1":            "",
		"itemClass2":            "",
		"warehouseCode":         warehouseCode,
		"warehouseName":         "",
		"warehouseLocationCode": "",
		"defectiveFlag":         "Y",
		"itemClass3":            "",
		"itemClass4":            "",
		"effectiveDateFrom":     "",
		"effectiveDateTo":       "",
		"creationDateFrom":      "",
		"creationDateTo":        "",
		"lotStatus":             "",
		"lotCode":               lotCode,
		"jobName":               "",
		"partnerItem":           "",
		"peopleName":            "",
		"start":                 1,
		"page":                  1,
		"limit":                 "40",
	}

	obj, err := c.Post(ctx, stockDetailPath, payload)
	if err != nil {
		return nil, err
	}

	var rows []StockRow
	for _, raw := range listData(obj) {
		var row StockRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decoding stock row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TransferHeaders looks up the transfer header rows for an item at a
// warehouse.
func (c *Client) TransferHeaders(ctx context.Context, itemCode, warehouseCode string) ([]TransferHeader, error) {
	profile := c.Profile()
	payload := map[string]any{
		"companyId":        profile.CompanyID,
		"plantId":          profile.PlantID,
		"warehouseCode":    warehouseCode,
		"warehouseName":    "",
		"locationCode":     "",
		"locationName":     "",
		"itemCode":         itemCode,
		"itemType":         "",
		"itemTypeName":     "",
		"productGroup":     "",
		"productGroupName": "",
		"projectCode":      "",
		"projectName":      "",
		"itemName":         "",
		"languageCode":     languageCode,
		"start":            1,
		"page":             1,
		"limit":            "20",
	}

	obj, err := c.Post(ctx, transferListPath, payload)
	if err != nil {
		return nil, err
	}

	var headers []TransferHeader
	for _, raw := range listData(obj) {
		var h TransferHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, fmt.Errorf("decoding transfer header: %w", err)
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// TransferLots fetches the candidate lot rows for a transfer header, keyed
// by the header's numeric item and warehouse identifiers.
func (c *Client) TransferLots(ctx context.Context, itemID, warehouseID int64) ([]TransferLot, error) {
	profile := c.Profile()
	payload := map[string]any{
		"languageCode":       languageCode,
		"companyId":          profile.CompanyID,
		"plantId":            profile.PlantID,
		"itemId":             itemID,
		"warehouseId":        warehouseID,
		"locationId":         0,
		"projectId":          0,
		"effectiveStartDate": "",
		"effectiveEndDate":   "",
		"start":              1,
		"page":               1,
		"limit":              25,
	}

	obj, err := c.Post(ctx, transferLotListPath, payload)
	if err != nil {
		return nil, err
	}

	var lots []TransferLot
	for _, raw := range listData(obj) {
		var l TransferLot
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decoding transfer lot: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, nil
}

// menuTreeID is the MES menu identifier of the manual warehouse-transfer
// screen; the save endpoint requires it.
const menuTreeID = "13648"

// SaveTransfer stages one transfer (the first phase of the two-phase
// workflow) and returns the staged-transfer identifier. The record sets are
// embedded as serialized JSON strings, matching what the MES web UI sends.
func (c *Client) SaveTransfer(ctx context.Context, header, lot map[string]any) (int64, error) {
	profile := c.Profile()

	recordsU, err := json.Marshal([]map[string]any{header})
	if err != nil {
		return 0, fmt.Errorf("encoding header record: %w", err)
	}
	recordsU2, err := json.Marshal([]map[string]any{lot})
	if err != nil {
		return 0, fmt.Errorf("encoding lot record: %w", err)
	}

	payload := map[string]any{
		"recordsI":     "[]",
		"recordsU":     string(recordsU),
		"recordsU2":    string(recordsU2),
		"recordsD":     "[]",
		"menuTreeId":   menuTreeID,
		"companyCode":  profile.CompanyCode,
		"companyId":    profile.CompanyID,
		"languageCode": languageCode,
	}

	obj, err := c.Post(ctx, transferSavePath, payload)
	if err != nil {
		return 0, err
	}

	stagedID := stagedTransferID(obj)
	if stagedID == 0 {
		slog.Error("save response carried no staged transfer id", "path", transferSavePath)
		return 0, &RemoteError{Endpoint: transferSavePath,
			Msg: "no staged transfer id in save response"}
	}
	return stagedID, nil
}

// stagedTransferID extracts the staged-transfer identifier from a save
// response. The MES returns either {"data": {"list": 14720}} or a bare
// {"data": 14720}, with the id sometimes string-typed; all shapes are
// accepted.
func stagedTransferID(obj map[string]json.RawMessage) int64 {
	raw, ok := obj["data"]
	if !ok {
		return 0
	}

	var nested struct {
		List json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested.List) > 0 {
		if id := numericID(nested.List); id != 0 {
			return id
		}
	}
	return numericID(raw)
}

// numericID parses a JSON value holding an integer, either as a number or
// as a string-wrapped number.
func numericID(raw json.RawMessage) int64 {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if id, err := num.Int64(); err == nil {
			return id
		}
		return 0
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// CommitTransfer finalizes a previously staged transfer (the second phase).
func (c *Client) CommitTransfer(ctx context.Context, stagedID int64) error {
	profile := c.Profile()
	_, err := c.Post(ctx, transferDoPath, map[string]any{
		"companyId":     profile.CompanyID,
		"transferTmpId": stagedID,
		"companyCode":   profile.CompanyCode,
		"languageCode":  languageCode,
	})
	return err
}
