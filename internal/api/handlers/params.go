package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/mcrisk/internal/risk"
	"github.com/wonny/mcrisk/internal/simulation"
)

// parseRequest 쿼리 → simulation.Request
// 생략된 파라미터는 nil (프로파일 기본값), 파싱 불가 값은 InvalidConfig
func parseRequest(q url.Values) (simulation.Request, error) {
	var req simulation.Request
	var err error

	req.Method = strings.TrimSpace(q.Get("method"))
	if req.Simulations, err = optionalInt(q, "simulations"); err != nil {
		return req, err
	}
	if req.Days, err = optionalInt(q, "days"); err != nil {
		return req, err
	}
	if req.Lookback, err = optionalInt(q, "lookback"); err != nil {
		return req, err
	}
	if s := q.Get("seed"); s != "" {
		seed, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return req, risk.ConfigError{Field: "seed", Message: fmt.Sprintf("cannot parse %q as an integer", s)}
		}
		req.Seed = &seed
	}
	if s := q.Get("position"); s != "" {
		v, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return req, risk.ConfigError{Field: "position_value", Message: fmt.Sprintf("cannot parse %q as a number", s)}
		}
		req.PositionValue = &v
	}

	return req, nil
}

// parseLevels confidence 파라미터 (생략 시 nil = 프로파일 기본값)
func parseLevels(q url.Values) ([]float64, error) {
	s := q.Get("confidence")
	if s == "" {
		return nil, nil
	}
	return risk.ParseConfidenceLevels(s)
}

// parseHistorical historical 플래그 (생략 시 false, 파싱 불가 값은 InvalidConfig)
func parseHistorical(q url.Values) (bool, error) {
	s := q.Get("historical")
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, risk.ConfigError{Field: "historical", Message: fmt.Sprintf("cannot parse %q as a boolean", s)}
	}
	return v, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, risk.ConfigError{Field: key, Message: fmt.Sprintf("cannot parse %q as an integer", s)}
	}
	return &v, nil
}
