package task

import (
	"fmt"
	"slices"
	"strings"
)

// ReferenceType is the category of the external entity a task is about.
type ReferenceType string

const (
	ReferenceOrder    ReferenceType = "ORDER"
	ReferenceShipment ReferenceType = "SHIPMENT"
	ReferenceEntity   ReferenceType = "ENTITY"
)

func (r ReferenceType) Valid() bool {
	switch r {
	case ReferenceOrder, ReferenceShipment, ReferenceEntity:
		return true
	}
	return false
}

func ParseReferenceType(v string) (ReferenceType, error) {
	r := ReferenceType(strings.ToUpper(strings.TrimSpace(v)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: reference type %q", ErrInvalid, v)
	}
	return r, nil
}

// TaskType is the kind of work a task represents.
type TaskType string

const (
	TypeCreateInvoice         TaskType = "CREATE_INVOICE"
	TypeCollectPayment        TaskType = "COLLECT_PAYMENT"
	TypePickup                TaskType = "PICKUP"
	TypeDelivery              TaskType = "DELIVERY"
	TypeAssignCustomerToSales TaskType = "ASSIGN_CUSTOMER_TO_SALES_PERSON"
)

// taskTypes lists every task type in declaration order with the reference
// categories it applies to.
var taskTypes = []struct {
	typ  TaskType
	refs []ReferenceType
}{
	{TypeCreateInvoice, []ReferenceType{ReferenceOrder}},
	{TypeCollectPayment, []ReferenceType{ReferenceOrder}},
	{TypePickup, []ReferenceType{ReferenceShipment}},
	{TypeDelivery, []ReferenceType{ReferenceShipment}},
	{TypeAssignCustomerToSales, []ReferenceType{ReferenceEntity}},
}

func (t TaskType) Valid() bool {
	for _, e := range taskTypes {
		if e.typ == t {
			return true
		}
	}
	return false
}

func ParseTaskType(v string) (TaskType, error) {
	t := TaskType(strings.ToUpper(strings.TrimSpace(v)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: task type %q", ErrInvalid, v)
	}
	return t, nil
}

// ApplicableTaskTypes returns the task types relevant to a reference category,
// in declaration order. Unknown categories yield nil.
func ApplicableTaskTypes(ref ReferenceType) []TaskType {
	var out []TaskType
	for _, e := range taskTypes {
		if slices.Contains(e.refs, ref) {
			out = append(out, e.typ)
		}
	}
	return out
}
