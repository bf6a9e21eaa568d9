package types

import "time"

// CommandKind discriminates transaction commands.
type CommandKind string

const (
	CommandCreate   CommandKind = "create"
	CommandMutate   CommandKind = "mutate"
	CommandTransfer CommandKind = "transfer"
	CommandDelete   CommandKind = "delete"
	CommandPay      CommandKind = "pay"
)

// Command is a single ledger operation inside a transaction. Fields are
// populated per Kind:
//
//	create:   TypeTag, Fields, Owner
//	mutate:   Object, ExpectedVersion, Fields (set-merge into the record)
//	transfer: Object, Recipient
//	delete:   Object
//	pay:      Coins, Recipients, Amounts (parallel slices)
type Command struct {
	Kind CommandKind `json:"kind"`

	TypeTag TypeTag                `json:"type,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Owner   *Owner                 `json:"owner,omitempty"`

	Object          ObjectID `json:"object,omitempty"`
	ExpectedVersion Version  `json:"expected_version,omitempty"`
	Recipient       *Owner   `json:"recipient,omitempty"`

	Coins      []ObjectID `json:"coins,omitempty"`
	Recipients []Address  `json:"recipients,omitempty"`
	Amounts    []uint64   `json:"amounts,omitempty"`
}

// Transaction is an ordered command batch applied atomically: either every
// command commits or none does. Nonce disambiguates otherwise identical
// transactions so digests stay unique.
type Transaction struct {
	Sender    Address   `json:"sender"`
	GasBudget uint64    `json:"gas_budget"`
	Commands  []Command `json:"commands"`
	Nonce     string    `json:"nonce,omitempty"`
}

// ExecutionStatus reports whether a transaction committed.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailure ExecutionStatus = "failure"
)

// Effects summarizes what a transaction did to the object set.
type Effects struct {
	Status  ExecutionStatus `json:"status"`
	Error   *string         `json:"error,omitempty"`
	Created []ObjectRef     `json:"created,omitempty"`
	Mutated []ObjectRef     `json:"mutated,omitempty"`
	Deleted []ObjectRef     `json:"deleted,omitempty"`
	GasUsed uint64          `json:"gas_used"`
}

// TransactionRecord is a committed transaction as stored in the log.
// Checkpoint is the record's position in the append-only log, starting at 1.
type TransactionRecord struct {
	Digest      TransactionDigest `json:"digest"`
	Transaction Transaction       `json:"transaction"`
	Effects     Effects           `json:"effects"`
	Checkpoint  uint64            `json:"checkpoint"`
	Timestamp   time.Time         `json:"timestamp"`
}

// CommandResult is a per-command outcome reported by dev-inspect.
type CommandResult struct {
	Index   int         `json:"index"`
	Kind    CommandKind `json:"kind"`
	Ref     *ObjectRef  `json:"ref,omitempty"`
	Error   *string     `json:"error,omitempty"`
	Success bool        `json:"success"`
}

// DevInspectResult is the outcome of a dev-inspect execution: the would-be
// effects and events of a transaction that was never committed.
type DevInspectResult struct {
	Effects Effects         `json:"effects"`
	Events  []Event         `json:"events"`
	Results []CommandResult `json:"results"`
}
