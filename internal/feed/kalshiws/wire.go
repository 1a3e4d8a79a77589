package kalshiws

import (
	"encoding/json"
	"time"
)

type wireEnvelope struct {
	Type string          `json:"type"`
	Msg  json.RawMessage `json:"msg"`
}

type wireTicker struct {
	MarketTicker string   `json:"market_ticker"`
	YesBid       *int     `json:"yes_bid"`
	YesAsk       *int     `json:"yes_ask"`
	LastPrice    *int     `json:"last_price"`
	Volume       *float64 `json:"volume"`
	Volume24h    *float64 `json:"volume_24h"`
	OpenInterest *float64 `json:"open_interest"`
	Ts           *int64   `json:"ts"`
}

type wireOrderbookSnapshot struct {
	MarketTicker string       `json:"market_ticker"`
	Yes          [][2]float64 `json:"yes"`
	No           [][2]float64 `json:"no"`
	Ts           *int64       `json:"ts"`
}

type wireOrderbookDelta struct {
	MarketTicker string  `json:"market_ticker"`
	Price        int     `json:"price"`
	Delta        float64 `json:"delta"`
	Side         string  `json:"side"`
	Ts           *int64  `json:"ts"`
}

type wireTrade struct {
	MarketTicker string   `json:"market_ticker"`
	Count        *float64 `json:"count"`
	YesPrice     *int     `json:"yes_price"`
	NoPrice      *int     `json:"no_price"`
	TakerSide    string   `json:"taker_side"`
	Ts           *int64   `json:"ts"`
}

type wireControl struct {
	Message string `json:"message"`
}

type wireSubscribeCmd struct {
	ID     int64               `json:"id"`
	Cmd    string              `json:"cmd"`
	Params wireSubscribeParams `json:"params"`
}

type wireSubscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers"`
}

func tsFromMillis(ms *int64, fallback time.Time) time.Time {
	if ms == nil {
		return fallback
	}
	return time.UnixMilli(*ms)
}

func levelsToPairs(raw [][2]float64) []priceSize {
	out := make([]priceSize, len(raw))
	for i, lvl := range raw {
		out[i] = priceSize{Price: int(lvl[0]), Size: lvl[1]}
	}
	return out
}

type priceSize struct {
	Price int
	Size  float64
}
