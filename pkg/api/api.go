// Package api defines the request and response messages of the splitgroup RPC
// services. Messages are encoded as JSON; monetary amounts travel as decimal
// strings with two fractional digits ("12.50") and timestamps as Unix seconds.
package api

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Group is a group with its memberships in join order.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   int64     `json:"created_at"`
	Members     []*Member `json:"members,omitempty"`
}

// Member is a membership. Status is "active" or "inactive".
type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Status      string `json:"status"`
	JoinedAt    int64  `json:"joined_at"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// AddMemberRequest identifies the new member by user ID or, if empty, by email.
type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id,omitempty"`
	Email   string `json:"email,omitempty"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type RemoveMemberResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

// Portion is one participant's value in a percentage, weight or fixed-amount split.
type Portion struct {
	UserID string `json:"user_id"`
	Value  string `json:"value"`
}

// SplitParams carries the portions for the selected split method.
type SplitParams struct {
	Percentages []Portion `json:"percentages,omitempty"`
	Weights     []Portion `json:"weights,omitempty"`
	Amounts     []Portion `json:"amounts,omitempty"`
}

// Share is the amount one participant owes.
type Share struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type Expense struct {
	ID           string   `json:"id"`
	GroupID      string   `json:"group_id"`
	PayerID      string   `json:"payer_id"`
	Description  string   `json:"description"`
	TotalAmount  string   `json:"total_amount"`
	Currency     string   `json:"currency"`
	ExpenseDate  int64    `json:"expense_date"`
	SplitMethod  string   `json:"split_method"`
	Participants []*Share `json:"participants"`
	CreatedAt    int64    `json:"created_at"`
}

// CreateExpenseRequest describes a new expense. PayerID defaults to the caller
// and Participants to the group's active members.
type CreateExpenseRequest struct {
	GroupID      string      `json:"group_id"`
	PayerID      string      `json:"payer_id,omitempty"`
	Description  string      `json:"description"`
	TotalAmount  string      `json:"total_amount"`
	Currency     string      `json:"currency,omitempty"`
	ExpenseDate  int64       `json:"expense_date,omitempty"`
	SplitMethod  string      `json:"split_method,omitempty"`
	Participants []string    `json:"participants,omitempty"`
	Params       SplitParams `json:"params"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces an expense and re-splits it.
type UpdateExpenseRequest struct {
	ExpenseID    string      `json:"expense_id"`
	PayerID      string      `json:"payer_id,omitempty"`
	Description  string      `json:"description"`
	TotalAmount  string      `json:"total_amount"`
	Currency     string      `json:"currency,omitempty"`
	ExpenseDate  int64       `json:"expense_date,omitempty"`
	SplitMethod  string      `json:"split_method,omitempty"`
	Participants []string    `json:"participants,omitempty"`
	Params       SplitParams `json:"params"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// PreviewSplitRequest computes shares without persisting anything.
type PreviewSplitRequest struct {
	GroupID      string      `json:"group_id"`
	TotalAmount  string      `json:"total_amount"`
	SplitMethod  string      `json:"split_method,omitempty"`
	Participants []string    `json:"participants,omitempty"`
	Params       SplitParams `json:"params"`
}

type PreviewSplitResponse struct {
	Shares []*Share `json:"shares"`
}

// SettleExpenseRequest records a payment to the payer from every participant
// not yet covered.
type SettleExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type SettleExpenseResponse struct {
	Payments []*Payment `json:"payments"`
}

type Payment struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	PayerID     string `json:"payer_id"`
	ReceiverID  string `json:"receiver_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	PaymentDate int64  `json:"payment_date"`
	CreatedAt   int64  `json:"created_at"`
}

// RecordPaymentRequest records money handed over. PayerID defaults to the caller.
type RecordPaymentRequest struct {
	GroupID     string `json:"group_id"`
	PayerID     string `json:"payer_id,omitempty"`
	ReceiverID  string `json:"receiver_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	PaymentDate int64  `json:"payment_date,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsRequest struct {
	GroupID string `json:"group_id"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

type DeletePaymentResponse struct{}

// Balance is a signed net position: positive means the user is owed money.
type Balance struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// Debt is an amount From owes To.
type Debt struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// SuggestedPayment is one transfer of a settlement plan.
type SuggestedPayment struct {
	PayerID    string `json:"payer_id"`
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	GroupID           string              `json:"group_id"`
	NetBalances       []*Balance          `json:"net_balances"`
	DetailedBalances  []*Debt             `json:"detailed_balances"`
	SimplifiedDebts   []*Debt             `json:"simplified_debts"`
	SuggestedPayments []*SuggestedPayment `json:"suggested_payments"`
	Cached            bool                `json:"cached"`
}

type SimplifyDebtsRequest struct {
	GroupID string `json:"group_id"`
}

type SimplifyDebtsResponse struct {
	Debts           []*Debt `json:"debts"`
	OriginalCount   int     `json:"original_count"`
	SimplifiedCount int     `json:"simplified_count"`
}
