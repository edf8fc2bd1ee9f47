// Package infra decodes the venue's order/trade wire arrays into
// business/orders/domain types.
package infra

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantos/triarb/business/orders/domain"
	"github.com/vantos/triarb/internal/money"
)

// decimalOf converts a wire float64 to decimal.Decimal with
// decimal.NewFromFloat, which keeps the shortest decimal form that
// round-trips to f.
func decimalOf(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Order array indices, per the venue's os/on/ou/oc payload shape:
// [0]=id [1]=gid [2]=cid [3]=symbol [6]=amount [7]=amount_orig
// [8]=type [13]=status [16]=price [5]=mts_update.
const (
	idxOrderID     = 0
	idxOrderGID    = 1
	idxOrderCID    = 2
	idxOrderSymbol = 3
	idxOrderMTS    = 5
	idxOrderAmount = 6
	idxOrderType   = 8
	idxOrderStatus = 13
	idxOrderPrice  = 16
)

// DecodeOrder parses one order array into a domain.Order. currencyOf
// resolves the symbol's quote currency for price/amount typing.
func DecodeOrder(raw json.RawMessage, currencyOf func(symbol string) (base, quote money.Currency, ok bool)) (domain.Order, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Order{}, fmt.Errorf("decode order array: %w", err)
	}
	if len(fields) <= idxOrderPrice {
		return domain.Order{}, fmt.Errorf("order array too short: %d fields", len(fields))
	}

	var id, gid, cid int64
	var symbol, typ, status string
	var amountF, priceF float64
	var mtsF float64
	_ = json.Unmarshal(fields[idxOrderID], &id)
	_ = json.Unmarshal(fields[idxOrderGID], &gid)
	_ = json.Unmarshal(fields[idxOrderCID], &cid)
	_ = json.Unmarshal(fields[idxOrderSymbol], &symbol)
	_ = json.Unmarshal(fields[idxOrderMTS], &mtsF)
	_ = json.Unmarshal(fields[idxOrderAmount], &amountF)
	_ = json.Unmarshal(fields[idxOrderType], &typ)
	_ = json.Unmarshal(fields[idxOrderStatus], &status)
	_ = json.Unmarshal(fields[idxOrderPrice], &priceF)

	base, quote, ok := currencyOf(symbol)
	if !ok {
		return domain.Order{}, fmt.Errorf("unknown symbol %q", symbol)
	}

	amountDec := decimalOf(amountF)
	priceDec := decimalOf(priceF)

	amount, err := money.ParseDecimal(base, amountDec)
	if err != nil {
		return domain.Order{}, err
	}
	price, err := money.ParseDecimal(quote, priceDec)
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID: id, ClientID: cid, GID: gid, Symbol: symbol, Type: typ,
		AmountSigned: amount, Price: price,
		Status:    domain.Status(normalizeStatus(status)),
		UpdatedAt: time.UnixMilli(int64(mtsF)),
	}, nil
}

// Trade array indices: [0]=id [1]=symbol [2]=mts [3]=order_id
// [4]=exec_amount [5]=exec_price.
const (
	idxTradeID     = 0
	idxTradeSymbol = 1
	idxTradeMTS    = 2
	idxTradeOrder  = 3
	idxTradeAmount = 4
	idxTradePrice  = 5
)

// DecodeTrade parses one trade array into a domain.Trade.
func DecodeTrade(raw json.RawMessage, currencyOf func(symbol string) (base, quote money.Currency, ok bool)) (domain.Trade, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Trade{}, fmt.Errorf("decode trade array: %w", err)
	}
	if len(fields) <= idxTradePrice {
		return domain.Trade{}, fmt.Errorf("trade array too short: %d fields", len(fields))
	}

	var id, orderID int64
	var symbol string
	var amountF, priceF, mtsF float64
	_ = json.Unmarshal(fields[idxTradeID], &id)
	_ = json.Unmarshal(fields[idxTradeSymbol], &symbol)
	_ = json.Unmarshal(fields[idxTradeMTS], &mtsF)
	_ = json.Unmarshal(fields[idxTradeOrder], &orderID)
	_ = json.Unmarshal(fields[idxTradeAmount], &amountF)
	_ = json.Unmarshal(fields[idxTradePrice], &priceF)

	base, quote, ok := currencyOf(symbol)
	if !ok {
		return domain.Trade{}, fmt.Errorf("unknown symbol %q", symbol)
	}

	amount, err := money.ParseDecimal(base, decimalOf(amountF))
	if err != nil {
		return domain.Trade{}, err
	}
	price, err := money.ParseDecimal(quote, decimalOf(priceF))
	if err != nil {
		return domain.Trade{}, err
	}

	return domain.Trade{
		ID: id, OrderID: orderID, Symbol: symbol,
		Price: price, Amount: amount, Timestamp: time.UnixMilli(int64(mtsF)),
	}, nil
}

// Notification array indices, per the venue's n payload shape:
// [0]=mts [1]=type [2]=message_id [4]=notify_info [6]=status [7]=text.
// notify_info is itself an order array for on-req/oc-req notifications,
// and its [2]=cid is how a notification is matched back to the chain
// step that submitted the order.
const (
	idxNotifType   = 1
	idxNotifInfo   = 4
	idxNotifStatus = 6
	idxNotifText   = 7
)

// DecodeNotification parses one notification array into a
// domain.Notification, extracting the submitting order's client id out
// of the nested notify_info order array when present.
func DecodeNotification(raw json.RawMessage) (domain.Notification, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.Notification{}, fmt.Errorf("decode notification array: %w", err)
	}
	if len(fields) <= idxNotifText {
		return domain.Notification{}, fmt.Errorf("notification array too short: %d fields", len(fields))
	}

	var typ, status, text string
	_ = json.Unmarshal(fields[idxNotifType], &typ)
	_ = json.Unmarshal(fields[idxNotifStatus], &status)
	_ = json.Unmarshal(fields[idxNotifText], &text)

	var clientID int64
	var info []json.RawMessage
	if err := json.Unmarshal(fields[idxNotifInfo], &info); err == nil && len(info) > idxOrderCID {
		_ = json.Unmarshal(info[idxOrderCID], &clientID)
	}

	return domain.Notification{
		Type: typ, ClientID: clientID, Status: status, Text: text,
	}, nil
}

// normalizeStatus trims trailing detail (e.g. "EXECUTED @ 100.0") that
// the venue sometimes appends to the status field.
func normalizeStatus(raw string) string {
	for i, r := range raw {
		if r == ' ' {
			return raw[:i]
		}
	}
	return raw
}
