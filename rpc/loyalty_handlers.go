package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"dinehook/crypto"
	"dinehook/native/loyalty"
)

type registerRestaurantParams struct {
	Caller      string  `json:"caller"`
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Active      *bool   `json:"active,omitempty"`
	OpenHour    uint8   `json:"openHour"`
	CloseHour   uint8   `json:"closeHour"`
	MaxTxAmount *string `json:"maxTxAmount,omitempty"`
}

type deactivateRestaurantParams struct {
	Caller string `json:"caller"`
	ID     string `json:"id"`
}

type setReferrerParams struct {
	User     string `json:"user"`
	Referrer string `json:"referrer"`
}

type restaurantQueryParams struct {
	ID string `json:"id"`
}

type userQueryParams struct {
	Address string `json:"address"`
}

type quoteFeeParams struct {
	Address string `json:"address"`
	// Timestamp is an optional unix time; the current time is used when
	// omitted so estimates reflect the live peak-hour window.
	Timestamp *int64 `json:"timestamp,omitempty"`
}

type restaurantResult struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Active      bool   `json:"active"`
	OpenHour    uint8  `json:"openHour"`
	CloseHour   uint8  `json:"closeHour"`
	MaxTxAmount string `json:"maxTxAmount"`
}

type userResult struct {
	Address            string `json:"address"`
	CumulativeSpend    string `json:"cumulativeSpend"`
	SwapCount          uint64 `json:"swapCount"`
	Tier               string `json:"tier"`
	TotalEarned        string `json:"totalEarned"`
	Referrer           string `json:"referrer,omitempty"`
	FirstSwapBonusPaid bool   `json:"firstSwapBonusPaid"`
	RewardBalance      string `json:"rewardBalance"`
	VIPBadge           bool   `json:"vipBadge"`
}

type quoteFeeResult struct {
	FeeBps   uint32 `json:"feeBps"`
	Override bool   `json:"override"`
	Tier     string `json:"tier"`
}

type totalsResult struct {
	Volume  string `json:"volume"`
	Rewards string `json:"rewards"`
}

func decodeBech32(value string) ([20]byte, error) {
	var out [20]byte
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return out, err
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

func decodeRestaurantID(value string) (loyalty.RestaurantID, error) {
	var id loyalty.RestaurantID
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, errors.New("restaurant id must be 32 bytes")
	}
	copy(id[:], raw)
	return id, nil
}

func decodeSingleParam(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return errors.New("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

// loyaltyErrorStatus maps module errors onto HTTP statuses following the
// error taxonomy: authorization problems are 403, policy and input problems
// are 400.
func loyaltyErrorStatus(err error) (int, int) {
	switch {
	case errors.Is(err, loyalty.ErrUnauthorized):
		return http.StatusForbidden, codeUnauthorized
	case errors.Is(err, loyalty.ErrSelfReferral),
		errors.Is(err, loyalty.ErrReferrerAlreadySet),
		errors.Is(err, loyalty.ErrInvalidReferrer),
		errors.Is(err, loyalty.ErrInvalidSchedule),
		errors.Is(err, loyalty.ErrInvalidRestaurant),
		errors.Is(err, loyalty.ErrUnknownRestaurant):
		return http.StatusBadRequest, codeInvalidParams
	default:
		return http.StatusInternalServerError, codeServerError
	}
}

func (s *Server) handleRegisterRestaurant(w http.ResponseWriter, req *RPCRequest) {
	var params registerRestaurantParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	id, err := decodeRestaurantID(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid restaurant id", err.Error())
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	rec := &loyalty.Restaurant{
		ID:        id,
		Owner:     owner,
		Active:    true,
		OpenHour:  params.OpenHour,
		CloseHour: params.CloseHour,
	}
	if params.Active != nil {
		rec.Active = *params.Active
	}
	if params.MaxTxAmount != nil {
		maxAmount, ok := new(big.Int).SetString(strings.TrimSpace(*params.MaxTxAmount), 10)
		if !ok {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid maxTxAmount", *params.MaxTxAmount)
			return
		}
		rec.MaxTxAmount = maxAmount
	}
	if err := s.node.RegisterRestaurant(caller, rec); err != nil {
		status, code := loyaltyErrorStatus(err)
		writeError(w, status, req.ID, code, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, restaurantResultFrom(rec))
}

func (s *Server) handleDeactivateRestaurant(w http.ResponseWriter, req *RPCRequest) {
	var params deactivateRestaurantParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	id, err := decodeRestaurantID(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid restaurant id", err.Error())
		return
	}
	if err := s.node.DeactivateRestaurant(caller, id); err != nil {
		status, code := loyaltyErrorStatus(err)
		writeError(w, status, req.ID, code, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"deactivated": true})
}

func (s *Server) handleSetReferrer(w http.ResponseWriter, req *RPCRequest) {
	var params setReferrerParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	user, err := decodeBech32(params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid user address", err.Error())
		return
	}
	referrer, err := decodeBech32(params.Referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid referrer address", err.Error())
		return
	}
	if err := s.node.SetReferrer(user, referrer); err != nil {
		status, code := loyaltyErrorStatus(err)
		writeError(w, status, req.ID, code, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, map[string]bool{"linked": true})
}

func (s *Server) handleGetRestaurant(w http.ResponseWriter, req *RPCRequest) {
	var params restaurantQueryParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	id, err := decodeRestaurantID(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid restaurant id", err.Error())
		return
	}
	rec, ok := s.node.Restaurant(id)
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "restaurant not found", nil)
		return
	}
	writeResult(w, req.ID, restaurantResultFrom(rec))
}

func (s *Server) handleGetUser(w http.ResponseWriter, req *RPCRequest) {
	var params userQueryParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	record, ok, err := s.node.UserRecord(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	if !ok {
		record = (&loyalty.UserLoyalty{Address: addr}).Normalize()
	}
	balance, err := s.node.RewardBalance(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	badge, err := s.node.HoldsBadge(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	result := userResult{
		Address:            crypto.NewAddress(crypto.DinePrefix, record.Address[:]).String(),
		CumulativeSpend:    record.CumulativeSpend.String(),
		SwapCount:          record.SwapCount,
		Tier:               record.Tier().String(),
		TotalEarned:        record.TotalEarned.String(),
		FirstSwapBonusPaid: record.FirstSwapBonusPaid,
		RewardBalance:      balance.String(),
		VIPBadge:           badge,
	}
	if record.HasReferrer {
		result.Referrer = crypto.NewAddress(crypto.DinePrefix, record.Referrer[:]).String()
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleQuoteFee(w http.ResponseWriter, req *RPCRequest) {
	var params quoteFeeParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	now := time.Now()
	if params.Timestamp != nil {
		now = time.Unix(*params.Timestamp, 0)
	}
	fee := s.node.QuoteFee(addr, now)
	record, ok, err := s.node.UserRecord(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	tier := loyalty.TierBronze
	if ok {
		tier = record.Tier()
	}
	writeResult(w, req.ID, quoteFeeResult{FeeBps: fee.Bps, Override: fee.Override, Tier: tier.String()})
}

func (s *Server) handleGetTotals(w http.ResponseWriter, req *RPCRequest) {
	totals, err := s.node.Totals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, totalsResult{Volume: totals.Volume.String(), Rewards: totals.Rewards.String()})
}

func restaurantResultFrom(rec *loyalty.Restaurant) restaurantResult {
	normalized := rec.Clone().Normalize()
	return restaurantResult{
		ID:          "0x" + hex.EncodeToString(normalized.ID[:]),
		Owner:       crypto.NewAddress(crypto.DinePrefix, normalized.Owner[:]).String(),
		Active:      normalized.Active,
		OpenHour:    normalized.OpenHour,
		CloseHour:   normalized.CloseHour,
		MaxTxAmount: normalized.MaxTxAmount.String(),
	}
}
