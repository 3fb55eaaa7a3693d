package cmd

import (
	"context"
	"fmt"
	"io"

	"rect/internal/service/chain"
	"rect/internal/service/signer"
	"rect/internal/service/submitter"
	"rect/pkg/codec"
	"rect/pkg/config"
	"rect/pkg/logger"
	"rect/pkg/wallet/types"

	"github.com/ethereum/go-ethereum/common"
)

func dialNode(ctx context.Context) (*chain.Client, error) {
	return chain.Dial(ctx, chain.Config{
		URL:         config.Global.RPC.URL,
		DialTimeout: config.Global.RPC.DialTimeout,
		CallTimeout: config.Global.RPC.CallTimeout,
	}, logger.Named("rect"))
}

// newSubmitter 组装 Signer + Node, 进度输出到 progress (stderr)
func newSubmitter(client *chain.Client, w *waitFlags, progress io.Writer) *submitter.Submitter {
	return submitter.New(signer.New(client, logger.Named("rect")), client, submitter.Options{
		PollInterval:  w.pollInterval,
		Confirmations: w.confirmations,
		Metrics:       metrics,
		Logger:        logger.Named("rect"),
		OnStage: func(stage submitter.Stage, hash common.Hash) {
			if !w.wait {
				return
			}
			if hash == (common.Hash{}) {
				fmt.Fprintf(progress, "» %s\n", stage)
				return
			}
			fmt.Fprintf(progress, "» %s %s\n", stage, hash.Hex())
		},
	})
}

// printRequest 显示交易详情供用户确认 (Verify on Screen)
func printRequest(w io.Writer, from common.Address, req *types.TransactionRequest) {
	fmt.Fprintln(w, "================ 交易 ================")
	fmt.Fprintf(w, "From:       %s\n", from.Hex())
	if to := req.To(); to != nil {
		fmt.Fprintf(w, "To:         %s\n", to.Hex())
	} else {
		fmt.Fprintln(w, "To:         (contract creation)")
	}
	fmt.Fprintf(w, "Value:      %s ETH\n", codec.FormatEther(req.ValueBig()))
	fmt.Fprintf(w, "Gas:        %s\n", req.GasLimit().Dec())
	if p := req.GasPrice(); p != nil {
		fmt.Fprintf(w, "GasPrice:   %s gwei\n", codec.FormatUnits(p.ToBig(), 9))
	} else {
		fmt.Fprintln(w, "GasPrice:   (node suggestion)")
	}
	if n, ok := req.Nonce(); ok {
		fmt.Fprintf(w, "Nonce:      %d\n", n)
	} else {
		fmt.Fprintln(w, "Nonce:      (pending nonce from node)")
	}
	if id := req.ChainID(); id != nil {
		fmt.Fprintf(w, "ChainID:    %s\n", id.Dec())
	}
	if data := req.Data(); len(data) > 0 {
		fmt.Fprintf(w, "Data:       %d bytes\n", len(data))
	}
	fmt.Fprintln(w, "======================================")
}

func printReceipt(w io.Writer, r *types.Receipt) {
	status := "success"
	if !r.Succeeded() {
		status = "failed"
	}
	fmt.Fprintf(w, "TxHash:     %s\n", r.TxHash.Hex())
	fmt.Fprintf(w, "Status:     %s\n", status)
	if r.BlockNumber != nil {
		fmt.Fprintf(w, "Block:      %s (%s)\n", r.BlockNumber.String(), r.BlockHash.Hex())
	}
	fmt.Fprintf(w, "GasUsed:    %d\n", r.GasUsed)
	if r.EffectiveGasPrice != nil {
		fmt.Fprintf(w, "Fee:        %s ETH\n", codec.FormatEther(codec.Fee(r.GasUsed, r.EffectiveGasPrice)))
	}
	if r.ContractAddress != nil {
		fmt.Fprintf(w, "Contract:   %s\n", r.ContractAddress.Hex())
	}
}
