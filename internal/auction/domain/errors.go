package domain

import "errors"

var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionEnded     = errors.New("auction has ended")
	ErrAlreadyEnded     = errors.New("auction was already finalized")
	ErrAuctionNotStarted = errors.New("auction has not started yet")
	ErrAuctionExpired   = errors.New("auction bidding window has expired")
	ErrAuctionStillOpen = errors.New("auction end time has not been reached")

	ErrBidTooLow            = errors.New("bid value does not exceed the current high bid")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidWindow        = errors.New("auction time window is invalid")
	ErrUnsupportedCurrency  = errors.New("currency is not accepted by this auction")
	ErrInvalidPriceFeed     = errors.New("price feed returned a non-positive reading")
	ErrValueMismatch        = errors.New("attached native value does not match the declared amount")
	ErrInsufficientAllowance = errors.New("bidder has not authorized a sufficient allowance")
	ErrInsufficientFunds    = errors.New("account balance is insufficient")
	ErrTransferFailed       = errors.New("transfer was rejected by the custody collaborator")
	ErrFeeExceedsBid        = errors.New("computed fee is not below the winning bid")

	// ErrReentrantCall marks a nested mutating call on an auction whose guard
	// is already held. Unreachable through sequential use; treated as a
	// contract violation, not a user error.
	ErrReentrantCall = errors.New("reentrant call on auction")
)
