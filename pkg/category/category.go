package category

import "errors"

var ErrCategoryNotFound = errors.New("category not found")

// Kind splits categories between the two transaction directions.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

type Category struct {
	Id    int
	Name  string
	Icon  string
	Color string
	Kind  Kind
}

// defaultCategories is seeded for every new user so the first transaction
// form is never empty. Users can rename or delete them freely afterwards.
var defaultCategories = []Category{
	{Name: "Groceries", Icon: "shopping-cart", Color: "#4CAF50", Kind: KindExpense},
	{Name: "Dining", Icon: "utensils", Color: "#FF7043", Kind: KindExpense},
	{Name: "Transport", Icon: "car", Color: "#42A5F5", Kind: KindExpense},
	{Name: "Housing", Icon: "home", Color: "#8D6E63", Kind: KindExpense},
	{Name: "Utilities", Icon: "bolt", Color: "#FFCA28", Kind: KindExpense},
	{Name: "Health", Icon: "heart-pulse", Color: "#EC407A", Kind: KindExpense},
	{Name: "Entertainment", Icon: "film", Color: "#AB47BC", Kind: KindExpense},
	{Name: "Shopping", Icon: "bag", Color: "#26A69A", Kind: KindExpense},
	{Name: "Subscriptions", Icon: "refresh", Color: "#7E57C2", Kind: KindExpense},
	{Name: "Other", Icon: "dots", Color: "#90A4AE", Kind: KindExpense},
	{Name: "Salary", Icon: "briefcase", Color: "#66BB6A", Kind: KindIncome},
	{Name: "Freelance", Icon: "laptop", Color: "#29B6F6", Kind: KindIncome},
	{Name: "Interest", Icon: "percent", Color: "#FFA726", Kind: KindIncome},
	{Name: "Other Income", Icon: "coins", Color: "#BDBDBD", Kind: KindIncome},
}
