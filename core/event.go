package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
)

// EventAction event action
type EventAction string

const (
	EventAccrueInterest       EventAction = "accrue_interest"
	EventMint                 EventAction = "mint"
	EventRedeem               EventAction = "redeem"
	EventBorrow               EventAction = "borrow"
	EventRepayBorrow          EventAction = "repay_borrow"
	EventLiquidateBorrow      EventAction = "liquidate_borrow"
	EventTransfer             EventAction = "transfer"
	EventReservesAdded        EventAction = "reserves_added"
	EventReservesReduced      EventAction = "reserves_reduced"
	EventMarketListed         EventAction = "market_listed"
	EventMarketEntered        EventAction = "market_entered"
	EventMarketExited         EventAction = "market_exited"
	EventNewCollateralFactor  EventAction = "new_collateral_factor"
	EventNewCloseFactor       EventAction = "new_close_factor"
	EventNewIncentive         EventAction = "new_liquidation_incentive"
	EventNewReserveFactor     EventAction = "new_reserve_factor"
	EventNewRateModel         EventAction = "new_interest_rate_model"
	EventNewPriceOracle       EventAction = "new_price_oracle"
	EventNewPauseGuardian     EventAction = "new_pause_guardian"
	EventActionPaused         EventAction = "action_paused"
	EventNewBorrowCap         EventAction = "new_borrow_cap"
	EventNewBorrowCapGuardian EventAction = "new_borrow_cap_guardian"
	EventNewPendingAdmin      EventAction = "new_pending_admin"
	EventNewAdmin             EventAction = "new_admin"
	EventNewImplementation    EventAction = "new_implementation"
	EventRewardSpeedUpdated   EventAction = "reward_speed_updated"
	EventContributorSpeed     EventAction = "contributor_speed_updated"
	EventDistributedSupplier  EventAction = "distributed_supplier_reward"
	EventDistributedBorrower  EventAction = "distributed_borrower_reward"
	EventRewardGranted        EventAction = "reward_granted"
	EventRewardClaimed        EventAction = "reward_claimed"
	EventRewardsFunded        EventAction = "rewards_funded"
)

const (
	EventKeyAmount        = "amount"
	EventKeyShares        = "shares"
	EventKeyPayer         = "payer"
	EventKeyBorrower      = "borrower"
	EventKeyLiquidator    = "liquidator"
	EventKeyCollateral    = "collateral"
	EventKeySeizeShares   = "seize_shares"
	EventKeyProtocolShare = "protocol_shares"
	EventKeyFrom          = "from"
	EventKeyTo            = "to"
	EventKeyOld           = "old"
	EventKeyNew           = "new"
	EventKeyRate          = "borrow_rate"
	EventKeyInterest      = "interest"
	EventKeyBorrowIndex   = "borrow_index"
	EventKeyTotalBorrows  = "total_borrows"
	EventKeyTotalReserves = "total_reserves"
	EventKeyAccountBorrow = "account_borrows"
	EventKeyAction        = "action"
	EventKeyPaused        = "paused"
	EventKeyIndex         = "index"
	EventKeySupplySpeed   = "supply_speed"
	EventKeyBorrowSpeed   = "borrow_speed"
)

// EventData extra data
type EventData map[string]interface{}

// NewEventData new event data
func NewEventData() EventData {
	return make(EventData)
}

// Put put data
func (d EventData) Put(key string, value interface{}) EventData {
	d[key] = value
	return d
}

// Format format as []byte by default
func (d EventData) Format() []byte {
	bs, e := json.Marshal(d)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Event record of a committed state change
type Event struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID   string         `sql:"size:36;unique_index:idx_events_trace_id" json:"trace_id,omitempty"`
	Action    EventAction    `sql:"size:36;index:idx_events_action" json:"action,omitempty"`
	Period    int64          `json:"period,omitempty"`
	Market    string         `sql:"size:36;index:idx_events_market" json:"market,omitempty"`
	Account   string         `sql:"size:64;index:idx_events_account" json:"account,omitempty"`
	Data      types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP;index:idx_events_created_at" json:"created_at,omitempty"`
}

// EventStore event store interface
type EventStore interface {
	Create(ctx context.Context, tx *db.DB, events []*Event) error
	List(ctx context.Context, offset time.Time, limit int) ([]*Event, error)
	ListByAccount(ctx context.Context, account string, limit int) ([]*Event, error)
}
