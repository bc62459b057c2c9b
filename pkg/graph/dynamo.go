package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const DefaultRegion = "us-east-2"

// DynamoDB accepts at most 25 put requests per BatchWriteItem
const maxItemsPerBatch = 25

// DynamoAPI is the subset of the DynamoDB client the store needs
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore reads a graph stored one item per vertex:
// ID (N), Out (L of N) and In (L of N)
type DynamoStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Vertices starts a consistent scan of the table, fetching pages on demand
func (s *DynamoStore) Vertices(ctx context.Context) (VertexIterator, error) {
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      aws.String(s.table),
		ConsistentRead: aws.Bool(true),
	})
	return &dynamoVertices{ctx: ctx, pages: p}, nil
}

// Import writes one item per vertex of g
func (s *DynamoStore) Import(ctx context.Context, g *Memory) error {
	ids := g.IDs()
	batches := (len(ids) + maxItemsPerBatch - 1) / maxItemsPerBatch
	for b := 0; b < batches; b++ {
		end := min((b+1)*maxItemsPerBatch, len(ids))
		requests := make([]types.WriteRequest, 0, end-b*maxItemsPerBatch)
		for _, id := range ids[b*maxItemsPerBatch : end] {
			requests = append(requests, marshalVertexWriteReq(id, g.Successors(id), g.Predecessors(id)))
		}
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: requests},
		})
		if err != nil {
			return fmt.Errorf("dynamo store: upload batch %d/%d: %w", b+1, batches, err)
		}
		if out != nil && len(out.UnprocessedItems[s.table]) > 0 {
			return fmt.Errorf("dynamo store: batch %d/%d left %d items unprocessed",
				b+1, batches, len(out.UnprocessedItems[s.table]))
		}
	}
	return nil
}

func marshalVertexWriteReq(id int64, out, in []int64) types.WriteRequest {
	return types.WriteRequest{
		PutRequest: &types.PutRequest{
			Item: map[string]types.AttributeValue{
				"ID":  &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
				"Out": &types.AttributeValueMemberL{Value: idsToAttributeValues(out)},
				"In":  &types.AttributeValueMemberL{Value: idsToAttributeValues(in)},
			},
		},
	}
}

func idsToAttributeValues(ids []int64) []types.AttributeValue {
	as := make([]types.AttributeValue, len(ids))
	for i, id := range ids {
		as[i] = &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)}
	}
	return as
}

type dynamoVertex struct {
	id  int64
	out []int64
	in  []int64
}

func (v dynamoVertex) ID() int64 { return v.id }

func (v dynamoVertex) OutEdges(context.Context) (EdgeIterator, error) {
	from := make([]int64, len(v.out))
	for i := range from {
		from[i] = v.id
	}
	return &sliceEdges{from: from}, nil
}

func (v dynamoVertex) InEdges(context.Context) (EdgeIterator, error) {
	return &sliceEdges{from: v.in}, nil
}

type dynamoVertices struct {
	ctx   context.Context
	pages *dynamodb.ScanPaginator
	items []map[string]types.AttributeValue
	pos   int
	cur   dynamoVertex
	err   error
}

func (it *dynamoVertices) Next() bool {
	if it.err != nil {
		return false
	}
	// Pages may come back empty while more remain
	for it.pos >= len(it.items) {
		if !it.pages.HasMorePages() {
			return false
		}
		page, err := it.pages.NextPage(it.ctx)
		if err != nil {
			it.err = fmt.Errorf("dynamo store: scan: %w", err)
			return false
		}
		it.items, it.pos = page.Items, 0
	}
	v, err := unmarshalVertex(it.items[it.pos])
	if err != nil {
		it.err = err
		return false
	}
	it.pos++
	it.cur = v
	return true
}

func (it *dynamoVertices) Vertex() Vertex { return it.cur }
func (it *dynamoVertices) Err() error     { return it.err }
func (it *dynamoVertices) Close() error   { return nil }

func unmarshalVertex(item map[string]types.AttributeValue) (dynamoVertex, error) {
	idAttr, ok := item["ID"].(*types.AttributeValueMemberN)
	if !ok {
		return dynamoVertex{}, fmt.Errorf("dynamo store: item without numeric ID")
	}
	id, err := strconv.ParseInt(idAttr.Value, 10, 64)
	if err != nil {
		return dynamoVertex{}, fmt.Errorf("dynamo store: ID %q: %w", idAttr.Value, err)
	}
	out, err := attributeValuesToIDs(item["Out"])
	if err != nil {
		return dynamoVertex{}, fmt.Errorf("dynamo store: Out of %d: %w", id, err)
	}
	in, err := attributeValuesToIDs(item["In"])
	if err != nil {
		return dynamoVertex{}, fmt.Errorf("dynamo store: In of %d: %w", id, err)
	}
	return dynamoVertex{id: id, out: out, in: in}, nil
}

func attributeValuesToIDs(attr types.AttributeValue) ([]int64, error) {
	// Missing list: no edges
	if attr == nil {
		return nil, nil
	}
	list, ok := attr.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	ids := make([]int64, len(list.Value))
	for i, a := range list.Value {
		n, ok := a.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("expected a number at %d", i)
		}
		id, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
