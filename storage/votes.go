package storage

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/votaseguro/election-ledger/logging"
)

type VoteStorage interface {
	GetAll(ctx context.Context) ([]*Vote, error)
	Create(ctx context.Context, vote *Vote) error
	GetByWallet(ctx context.Context, wallet string) ([]*Vote, error)
	AttachTransaction(ctx context.Context, wallet, category, txHash string, onChain bool) error
	Delete(ctx context.Context, wallet, category string) error
	DeleteAll(ctx context.Context) error
}

type DynamoVoteStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoVoteStorage) GetAll(ctx context.Context) ([]*Vote, error) {
	items, err := scanAll(ctx, s.Client, s.TableName, nil)
	if err != nil {
		logging.Log.Errorf("VOTE: scan failed: %v", err)
		return nil, err
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal vote list: %v", err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoVoteStorage) Create(ctx context.Context, vote *Vote) error {
	item, err := attributevalue.MarshalMap(vote)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
		return err
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("VOTE: %s already voted in %s", vote.WalletAddress, vote.Category)
			return ErrAlreadyVoted
		}
		logging.Log.Errorf("VOTE: failed to create vote: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVoteStorage) GetByWallet(ctx context.Context, wallet string) ([]*Vote, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :wallet"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":wallet": &types.AttributeValueMemberS{Value: wallet},
		},
		ConsistentRead: aws.Bool(true),
	}

	output, err := s.Client.Query(ctx, input)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query votes by wallet: %v", err)
		return nil, err
	}

	var votes []*Vote
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal votes for wallet %s: %v", wallet, err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoVoteStorage) AttachTransaction(ctx context.Context, wallet, category, txHash string, onChain bool) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: wallet},
			"SK": &types.AttributeValueMemberS{Value: category},
		},
		UpdateExpression:    aws.String("SET TransactionHash = :hash, OnChain = :onChain"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash":    &types.AttributeValueMemberS{Value: txHash},
			":onChain": &types.AttributeValueMemberBOOL{Value: onChain},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("VOTE: failed to attach transaction for %s/%s: %v", wallet, category, err)
		return err
	}
	return nil
}

func (s *DynamoVoteStorage) Delete(ctx context.Context, wallet, category string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: wallet},
			"SK": &types.AttributeValueMemberS{Value: category},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("VOTE: failed to delete vote %s/%s: %v", wallet, category, err)
		return err
	}
	logging.Log.Infof("VOTE: deleted vote %s/%s", wallet, category)
	return nil
}

func (s *DynamoVoteStorage) DeleteAll(ctx context.Context) error {
	items, err := scanAll(ctx, s.Client, s.TableName, aws.String("PK, SK"))
	if err != nil {
		logging.Log.Errorf("VOTE: scan for delete failed: %v", err)
		return err
	}

	var writeRequests []types.WriteRequest
	for _, item := range items {
		writeRequests = append(writeRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": item["PK"],
					"SK": item["SK"],
				},
			},
		})
	}

	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}
		_, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.TableName: writeRequests[i:end],
			},
		})
		if err != nil {
			logging.Log.Errorf("VOTE: batch delete failed: %v", err)
			return err
		}
		logging.Log.Infof("VOTE: deleted batch of %d items", end-i)
	}

	return nil
}
