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

type CandidateStorage interface {
	Get(ctx context.Context, id string) (*Candidate, error)
	GetAll(ctx context.Context) ([]*Candidate, error)
	Create(ctx context.Context, candidate *Candidate) error
	Update(ctx context.Context, candidate *Candidate) error
	Delete(ctx context.Context, id string) error
	IncrementVotes(ctx context.Context, id string) error
	ResetVotes(ctx context.Context) error
}

type DynamoCandidateStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoCandidateStorage) Get(ctx context.Context, id string) (*Candidate, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		logging.Log.Warnf("CANDIDATE: no candidate found with ID %s", id)
		return nil, ErrNotFound
	}

	var candidate Candidate
	if err := attributevalue.UnmarshalMap(out.Item, &candidate); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal candidate: %v", err)
		return nil, err
	}
	return &candidate, nil
}

func (s *DynamoCandidateStorage) GetAll(ctx context.Context) ([]*Candidate, error) {
	items, err := scanAll(ctx, s.Client, s.TableName, nil)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: scan failed: %v", err)
		return nil, err
	}

	var candidates []*Candidate
	if err := attributevalue.UnmarshalListOfMaps(items, &candidates); err != nil {
		logging.Log.Errorf("CANDIDATE: failed to unmarshal list: %v", err)
		return nil, err
	}
	return candidates, nil
}

func (s *DynamoCandidateStorage) Create(ctx context.Context, candidate *Candidate) error {
	item, err := attributevalue.MarshalMap(candidate)
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal candidate: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("CANDIDATE: item with ID %s already exists", candidate.ID)
			return ErrAlreadyExists
		}
		logging.Log.Errorf("CANDIDATE: failed to create candidate: %v", err)
		return err
	}
	return nil
}

// Update rewrites the descriptive fields and leaves the vote count untouched.
func (s *DynamoCandidateStorage) Update(ctx context.Context, candidate *Candidate) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: candidate.ID},
		},
		UpdateExpression: aws.String("SET #n = :name, #p = :party, #c = :category, #i = :image"),
		ExpressionAttributeNames: map[string]string{
			"#n": "Name",
			"#p": "Party",
			"#c": "Category",
			"#i": "Image",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":     &types.AttributeValueMemberS{Value: candidate.Name},
			":party":    &types.AttributeValueMemberS{Value: candidate.Party},
			":category": &types.AttributeValueMemberS{Value: candidate.Category},
			":image":    &types.AttributeValueMemberS{Value: candidate.Image},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("CANDIDATE: failed to update candidate: %v", err)
		return err
	}
	return nil
}

func (s *DynamoCandidateStorage) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("CANDIDATE: failed to marshal delete key for ID %s: %v", id, err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &s.TableName,
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("CANDIDATE: failed to delete candidate with ID %s: %v", id, err)
		return err
	}
	logging.Log.Infof("CANDIDATE: deleted candidate with ID %s", id)
	return nil
}

func (s *DynamoCandidateStorage) IncrementVotes(ctx context.Context, id string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("ADD #v :one"),
		ExpressionAttributeNames:  map[string]string{"#v": "Votes"},
		ConditionExpression:       aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrNotFound
		}
		logging.Log.Errorf("CANDIDATE: failed to increment votes for %s: %v", id, err)
		return err
	}
	return nil
}

func (s *DynamoCandidateStorage) ResetVotes(ctx context.Context) error {
	items, err := scanAll(ctx, s.Client, s.TableName, aws.String("PK"))
	if err != nil {
		logging.Log.Errorf("CANDIDATE: scan for reset failed: %v", err)
		return err
	}

	for _, item := range items {
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.TableName),
			Key:                       map[string]types.AttributeValue{"PK": item["PK"]},
			UpdateExpression:          aws.String("SET #v = :zero"),
			ExpressionAttributeNames:  map[string]string{"#v": "Votes"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":zero": &types.AttributeValueMemberN{Value: "0"}},
		})
		if err != nil {
			logging.Log.Errorf("CANDIDATE: failed to reset votes: %v", err)
			return err
		}
	}
	logging.Log.Infof("CANDIDATE: reset votes of %d candidates", len(items))
	return nil
}

// scanAll follows LastEvaluatedKey until the whole table has been read.
func scanAll(ctx context.Context, client *dynamodb.Client, table string, projection *string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            &table,
			ExclusiveStartKey:    lastEvaluatedKey,
			ProjectionExpression: projection,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)

		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
}
