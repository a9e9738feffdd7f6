// Package ledger anchors settlement results on the Hedera Consensus
// Service. Each winner gets its own topic carrying a single canonical
// proof message; the resulting transaction id is the publicly
// verifiable reference stored alongside the winner.
//
// The committer never fails a settlement: missing credentials degrade
// to a simulated commit and network errors degrade to a failed record,
// both carrying synthetic transaction ids so downstream consumers
// always have something to display.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/gowebpki/jcs"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
)

// proofMessageType tags the consensus message so topic scanners can
// recognize settlement proofs.
const proofMessageType = "VOTECHAIN_WINNER"

// Config holds Hedera operator credentials. Empty AccountID or
// PrivateKey switches the committer to simulated mode.
type Config struct {
	// AccountID is the operator account, e.g. "0.0.12345".
	AccountID string

	// PrivateKey is the operator key in DER, hex, or raw Ed25519 form.
	PrivateKey string

	// Network selects "testnet" or "mainnet". Defaults to testnet.
	Network string

	// RequestTimeout bounds individual SDK calls. Zero keeps the SDK
	// default.
	RequestTimeout time.Duration
}

// Committer implements ports.LedgerCommitter against the Hedera
// Consensus Service.
type Committer struct {
	client    *hedera.Client
	network   string
	simulated bool
	logger    *slog.Logger
}

var _ ports.LedgerCommitter = (*Committer)(nil)

// NewCommitter builds a Committer from operator credentials. Missing
// credentials produce a working committer in simulated mode rather
// than an error, so deployments without a Hedera account still settle
// rooms. An invalid account id or key is an error: partial credentials
// mean misconfiguration, not an intentional opt-out.
func NewCommitter(cfg Config, logger *slog.Logger) (*Committer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	network := cfg.Network
	if network == "" {
		network = "testnet"
	}
	networkLabel := "hedera_" + network

	if cfg.AccountID == "" || cfg.PrivateKey == "" {
		logger.Warn("hedera credentials not configured, ledger commits will be simulated")
		return &Committer{network: networkLabel, simulated: true, logger: logger}, nil
	}

	accountID, err := hedera.AccountIDFromString(cfg.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid hedera account id: %w", err)
	}

	privateKey, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hedera private key: %w", err)
	}

	var client *hedera.Client
	switch network {
	case "mainnet":
		client = hedera.ClientForMainnet()
	default:
		client = hedera.ClientForTestnet()
	}
	client.SetOperator(accountID, privateKey)
	if cfg.RequestTimeout > 0 {
		timeout := cfg.RequestTimeout
		client.SetRequestTimeout(&timeout)
	}

	return &Committer{client: client, network: networkLabel, logger: logger}, nil
}

// parsePrivateKey tries the key encodings operators paste in practice:
// DER strings start with "302", hex strings parse generically, and raw
// Ed25519 seeds are the last resort.
func parsePrivateKey(raw string) (hedera.PrivateKey, error) {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "302") {
		if key, err := hedera.PrivateKeyFromStringDer(raw); err == nil {
			return key, nil
		}
	}
	if key, err := hedera.PrivateKeyFromString(raw); err == nil {
		return key, nil
	}
	return hedera.PrivateKeyFromStringEd25519(raw)
}

// Network returns the network label recorded with each commit.
func (c *Committer) Network() string { return c.network }

// Commit anchors the winner proof on the consensus service. It never
// returns an error: outcomes are expressed through the result status
// so the caller can persist whatever happened.
func (c *Committer) Commit(ctx context.Context, proof domain.WinnerProof) domain.LedgerResult {
	if c.simulated {
		return domain.LedgerResult{
			TransactionID: syntheticTransactionID("simulated"),
			Network:       c.network,
			Status:        domain.LedgerSimulated,
		}
	}

	result, err := c.submit(ctx, proof)
	if err != nil {
		c.logger.Error("hedera commit failed",
			"room_id", proof.RoomID, "winner_id", proof.WinnerID, "error", err)
		return domain.LedgerResult{
			TransactionID: syntheticTransactionID("failed"),
			Network:       c.network,
			Status:        domain.LedgerFailed,
			Err:           err.Error(),
		}
	}
	return result
}

func (c *Committer) submit(ctx context.Context, proof domain.WinnerProof) (domain.LedgerResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.LedgerResult{}, err
	}

	memo := topicMemo(proof.RoomID)
	topicResp, err := hedera.NewTopicCreateTransaction().
		SetTopicMemo(memo).
		Execute(c.client)
	if err != nil {
		return domain.LedgerResult{}, fmt.Errorf("creating topic: %w", err)
	}

	topicReceipt, err := topicResp.GetReceipt(c.client)
	if err != nil {
		return domain.LedgerResult{}, fmt.Errorf("topic receipt: %w", err)
	}
	if topicReceipt.TopicID == nil {
		return domain.LedgerResult{}, fmt.Errorf("topic receipt carried no topic id")
	}
	topicID := *topicReceipt.TopicID

	message, err := proofMessage(proof)
	if err != nil {
		return domain.LedgerResult{}, fmt.Errorf("encoding proof: %w", err)
	}

	msgResp, err := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topicID).
		SetMessage(message).
		Execute(c.client)
	if err != nil {
		return domain.LedgerResult{}, fmt.Errorf("submitting message: %w", err)
	}

	msgReceipt, err := msgResp.GetReceipt(c.client)
	if err != nil {
		return domain.LedgerResult{}, fmt.Errorf("message receipt: %w", err)
	}

	status := domain.LedgerPending
	if msgReceipt.Status == hedera.StatusSuccess {
		status = domain.LedgerConfirmed
	}

	c.logger.Info("winner anchored on hedera",
		"room_id", proof.RoomID,
		"topic_id", topicID.String(),
		"status", status,
	)

	return domain.LedgerResult{
		TransactionID: formatTransactionID(msgResp.TransactionID),
		Network:       c.network,
		Status:        status,
		TopicID:       topicID.String(),
	}, nil
}

// topicMemo labels the topic with a truncated room id; full ids exceed
// the memo's usefulness for explorers.
func topicMemo(roomID string) string {
	short := roomID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("VoteChain Winner: Room %s", short)
}

// proofMessage renders the proof as canonical JSON so independently
// produced messages for the same winner are byte-identical.
func proofMessage(proof domain.WinnerProof) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"app":          "votechain",
		"type":         proofMessageType,
		"room_id":      proof.RoomID,
		"winner_id":    proof.WinnerID,
		"candidate_id": proof.CandidateID,
		"final_score":  proof.FinalScore,
		"timestamp":    proof.Timestamp.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	return jcs.Transform(payload)
}

// formatTransactionID renders a transaction id as
// accountId-seconds-nanoseconds, the form explorers accept in URLs.
func formatTransactionID(txID hedera.TransactionID) string {
	if txID.AccountID == nil || txID.ValidStart == nil {
		return syntheticTransactionID("failed")
	}
	return fmt.Sprintf("%s-%d-%09d",
		txID.AccountID.String(),
		txID.ValidStart.Unix(),
		txID.ValidStart.Nanosecond(),
	)
}

// syntheticTransactionID fabricates a unique placeholder id for commits
// that never reached the network.
func syntheticTransactionID(prefix string) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, time.Now().UnixMilli(), rand.Intn(1_000_000))
}
