package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// 网络选择器 -> Blockfrost 基地址
const (
	NetworkMainnet = "mainnet"
	NetworkPreprod = "preprod"

	mainnetBaseURL = "https://cardano-mainnet.blockfrost.io/api/v0"
	preprodBaseURL = "https://cardano-preprod.blockfrost.io/api/v0"
)

// ErrTxNotFound 交易还没被索引到 (或 hash 本身就是错的)
// 索引服务是最终一致的，刚提交的交易会 404 一个窗口期，调用方按可重试处理
var ErrTxNotFound = errors.New("transaction not found in indexer")

// APIError 索引服务的非 404 故障，带状态码和响应体
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blockfrost API error %d: %s", e.Status, e.Body)
}

// Client is a Blockfrost HTTP client
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
}

func NewClient(network, projectID string) (*Client, error) {
	var baseURL string
	switch network {
	case NetworkMainnet, "":
		baseURL = mainnetBaseURL
	case NetworkPreprod:
		baseURL = preprodBaseURL
	default:
		return nil, fmt.Errorf("unknown cardano network %q", network)
	}
	return &Client{
		baseURL:   baseURL,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewClientWithBaseURL 指定基地址，测试用 httptest 替身时走这里
func NewClientWithBaseURL(baseURL, projectID string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// Blockfrost 用 project_id 头做认证
	req.Header.Set("project_id", c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTxNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}

// GetTransaction 按 hash 取交易
func (c *Client) GetTransaction(ctx context.Context, txHash string) (*Transaction, error) {
	data, err := c.doGet(ctx, "/txs/"+txHash)
	if err != nil {
		return nil, err
	}

	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// GetTransactionUTXOs 取交易的输入输出集合 (索引服务里是单独的一个接口)
func (c *Client) GetTransactionUTXOs(ctx context.Context, txHash string) (*TxUTXOs, error) {
	data, err := c.doGet(ctx, "/txs/"+txHash+"/utxos")
	if err != nil {
		return nil, err
	}

	var utxos TxUTXOs
	if err := json.Unmarshal(data, &utxos); err != nil {
		return nil, fmt.Errorf("unmarshal utxos: %w", err)
	}
	return &utxos, nil
}
