package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/votaseguro/election-ledger/logging"
)

type ElectionStorage interface {
	// Get returns the stored state, or an active election without a
	// scheduled close when nothing was stored yet.
	Get(ctx context.Context) (*Election, error)
	Put(ctx context.Context, election *Election) error
}

type DynamoElectionStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoElectionStorage) Get(ctx context.Context) (*Election, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": ElectionKey})
	if err != nil {
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: GetItem failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return &Election{ID: ElectionKey, Active: true}, nil
	}

	var election Election
	if err := attributevalue.UnmarshalMap(out.Item, &election); err != nil {
		logging.Log.Errorf("ELECTION: failed to unmarshal state: %v", err)
		return nil, err
	}
	return &election, nil
}

func (s *DynamoElectionStorage) Put(ctx context.Context, election *Election) error {
	election.ID = ElectionKey
	item, err := attributevalue.MarshalMap(election)
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to marshal state: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("ELECTION: failed to store state: %v", err)
		return err
	}
	return nil
}
