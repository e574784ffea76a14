package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/votaseguro/election-ledger/logging"
)

type UserStorage interface {
	Get(ctx context.Context, wallet string) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	ConsumeToken(ctx context.Context, wallet string) error
	RefundToken(ctx context.Context, wallet string) error
	ResetTokens(ctx context.Context) error
}

type DynamoUserStorage struct {
	Client    *dynamodb.Client
	TableName string
}

func (s *DynamoUserStorage) Get(ctx context.Context, wallet string) (*User, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": wallet})
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal key for %s: %v", wallet, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("USER: GetItem for %s failed: %v", wallet, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var user User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user: %v", err)
		return nil, err
	}
	return &user, nil
}

func (s *DynamoUserStorage) GetAll(ctx context.Context) ([]*User, error) {
	items, err := scanAll(ctx, s.Client, s.TableName, nil)
	if err != nil {
		logging.Log.Errorf("USER: scan failed: %v", err)
		return nil, err
	}

	var users []*User
	if err := attributevalue.UnmarshalListOfMaps(items, &users); err != nil {
		logging.Log.Errorf("USER: failed to unmarshal user list: %v", err)
		return nil, err
	}
	return users, nil
}

func (s *DynamoUserStorage) Create(ctx context.Context, user *User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		logging.Log.Errorf("USER: failed to marshal user: %v", err)
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
			logging.Log.Warnf("USER: wallet %s already registered", user.WalletAddress)
			return ErrAlreadyExists
		}
		logging.Log.Errorf("USER: failed to create user: %v", err)
		return err
	}
	return nil
}

// Update never touches TokensUsed, that counter only moves through
// ConsumeToken and RefundToken. Assigned tokens may not drop below it.
func (s *DynamoUserStorage) Update(ctx context.Context, user *User) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: user.WalletAddress},
		},
		UpdateExpression:    aws.String("SET #n = :name, #e = :email, #a = :assigned, #act = :active"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #u <= :assigned"),
		ExpressionAttributeNames: map[string]string{
			"#n":   "Name",
			"#e":   "Email",
			"#a":   "TokensAssigned",
			"#u":   "TokensUsed",
			"#act": "Active",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":     &types.AttributeValueMemberS{Value: user.Name},
			":email":    &types.AttributeValueMemberS{Value: user.Email},
			":assigned": &types.AttributeValueMemberN{Value: strconv.Itoa(user.TokensAssigned)},
			":active":   &types.AttributeValueMemberBOOL{Value: user.Active},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("USER: update of %s rejected by condition", user.WalletAddress)
			if _, getErr := s.Get(ctx, user.WalletAddress); getErr != nil {
				return getErr
			}
			return ErrTokensBelowUsed
		}
		logging.Log.Errorf("USER: failed to update user: %v", err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) ConsumeToken(ctx context.Context, wallet string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: wallet},
		},
		UpdateExpression:    aws.String("SET #u = #u + :one"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #u < #a"),
		ExpressionAttributeNames: map[string]string{
			"#u": "TokensUsed",
			"#a": "TokensAssigned",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			logging.Log.Warnf("USER: %s has no tokens remaining", wallet)
			return ErrNoTokensRemaining
		}
		logging.Log.Errorf("USER: failed to consume token for %s: %v", wallet, err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) RefundToken(ctx context.Context, wallet string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: wallet},
		},
		UpdateExpression:          aws.String("SET #u = #u - :one"),
		ConditionExpression:       aws.String("attribute_exists(PK) AND #u > :zero"),
		ExpressionAttributeNames:  map[string]string{"#u": "TokensUsed"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}, ":zero": &types.AttributeValueMemberN{Value: "0"}},
	})
	if err != nil {
		logging.Log.Errorf("USER: failed to refund token for %s: %v", wallet, err)
		return err
	}
	return nil
}

func (s *DynamoUserStorage) ResetTokens(ctx context.Context) error {
	items, err := scanAll(ctx, s.Client, s.TableName, aws.String("PK"))
	if err != nil {
		logging.Log.Errorf("USER: scan for reset failed: %v", err)
		return err
	}

	for _, item := range items {
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.TableName),
			Key:                       map[string]types.AttributeValue{"PK": item["PK"]},
			UpdateExpression:          aws.String("SET #u = :zero"),
			ExpressionAttributeNames:  map[string]string{"#u": "TokensUsed"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":zero": &types.AttributeValueMemberN{Value: "0"}},
		})
		if err != nil {
			logging.Log.Errorf("USER: failed to reset tokens: %v", err)
			return err
		}
	}
	logging.Log.Infof("USER: reset tokens of %d users", len(items))
	return nil
}
