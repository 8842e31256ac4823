package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/oksasatya/user-account-api/internal/domain/entity"
)

// prefixUpperBound derives the exclusive upper bound of a "starts with" range
// scan over an ordered index: the prefix with the code point of its last
// character incremented by one ("al" -> "am"). Combined with name >= prefix
// this yields exactly the names for which prefix is a literal leading
// substring, under case-sensitive code-point ordering.
func prefixUpperBound(prefix string) string {
	runes := []rune(prefix)
	runes[len(runes)-1]++
	return string(runes)
}

// listFilter composes the filter for one listing page from the validated
// inputs. prefix narrows to names in [prefix, upperBound); cursor resumes
// strictly after the (name, _id) position of the cursor document. Both
// combine with plain AND semantics.
func listFilter(prefix string, cursor *entity.User) bson.M {
	var clauses []bson.M
	if prefix != "" {
		clauses = append(clauses, bson.M{
			"name": bson.M{"$gte": prefix, "$lt": prefixUpperBound(prefix)},
		})
	}
	if cursor != nil {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"name": bson.M{"$gt": cursor.Name}},
			bson.M{"name": cursor.Name, "_id": bson.M{"$gt": cursor.ID}},
		}})
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// cutPage trims an oversupplied fetch (limit+1 documents) down to one page.
// When more than limit documents came back, the last record of the returned
// page becomes the cursor for the next one; otherwise this was the final page.
func cutPage(users []entity.User, limit int) ([]entity.User, string) {
	if len(users) <= limit {
		return users, ""
	}
	return users[:limit], users[limit-1].ID.Hex()
}
