package ai

import (
	"fmt"
	"strings"

	"sothuchi/internal/core"
	"sothuchi/internal/ledger"
)

// Prompt builders. Kept as pure functions so the wording can be tested
// without a live collaborator. All user-facing output is Vietnamese.

const (
	AccountantSystem = "Bạn là một trợ lý kế toán chuyên nghiệp. Hãy phân loại ngắn gọn bằng tiếng Việt."
	AdvisorSystem    = "Bạn là chuyên gia kế toán cao cấp (CPA). Hãy trả lời câu hỏi dựa trên dữ liệu được cung cấp. " +
		"Câu trả lời cần ngắn gọn, chuyên nghiệp, hữu ích và bằng tiếng Việt. " +
		"Nếu không có dữ liệu liên quan, hãy đưa ra lời khuyên chung về kế toán."
	jsonOnly = "Chỉ trả về JSON hợp lệ, không thêm giải thích hay markdown."
)

// Recent-history caps keep prompt sizes bounded on large ledgers.
const (
	adviceContextLimit = 50
	reportContextLimit = 100
)

func CategoryPrompt(description string) string {
	return fmt.Sprintf(`Phân loại giao dịch tài chính này dựa trên mô tả: %q.
Trả về JSON theo mẫu: {"category": string (tiếng Việt, ví dụ: Ăn uống, Di chuyển, Lương, Bán hàng, Tiện ích), "type": "INCOME"|"EXPENSE", "confidence": number (0..1)}.
%s`, description, jsonOnly)
}

func AdvicePrompt(txs []core.Transaction, query string) string {
	var b strings.Builder
	for i, tx := range txs {
		if i == adviceContextLimit {
			break
		}
		fmt.Fprintf(&b, "%s: %s - %s VND (%s)\n", tx.Date, tx.Description, core.FormatVND(tx.Amount.VND), tx.Type)
	}
	return fmt.Sprintf("Dữ liệu giao dịch gần đây:\n%s\nCâu hỏi của người dùng: %s", b.String(), query)
}

// ReportPrompt embeds locally computed totals so the model analyzes verified
// numbers instead of inventing its own arithmetic.
func ReportPrompt(txs []core.Transaction) string {
	summary := ledger.Summarize(txs)
	byCategory := ledger.CategoryTotals(txs)

	var cats strings.Builder
	for category, total := range byCategory {
		fmt.Fprintf(&cats, "  - %s: %d\n", category, total)
	}

	var list strings.Builder
	for i, tx := range txs {
		if i == reportContextLimit {
			break
		}
		fmt.Fprintf(&list, "- %s | %s | %s | %d | %s\n", tx.Date, tx.Type, tx.Category, tx.Amount.VND, tx.Description)
	}

	return fmt.Sprintf(`Dựa trên dữ liệu tài chính sau:
- Tổng thu: %d
- Tổng chi: %d
- Số dư: %d
- Chi tiết chi phí theo danh mục:
%s- Danh sách giao dịch gần nhất:
%s
Hãy đóng vai là một Kế Toán Trưởng (CFO) có 20 năm kinh nghiệm. Viết một báo cáo phân tích tài chính chuyên sâu.
Báo cáo cần có cấu trúc sau (sử dụng Markdown để trình bày đẹp):

### 1. Tổng Quan Sức Khỏe Tài Chính
(Đánh giá chung về tình hình lãi/lỗ, tỷ lệ thu/chi)

### 2. Phân Tích Xu Hướng & Bất Thường
(Chỉ ra các khoản chi tiêu lớn, các xu hướng tăng giảm đáng chú ý, hoặc các giao dịch bất thường nếu có)

### 3. Đánh Giá Rủi Ro (Quan trọng)
(Dự báo các rủi ro tiềm ẩn như: mất cân đối dòng tiền, phụ thuộc vào một nguồn thu, lãng phí chi phí...)

### 4. Khuyến Nghị Chiến Lược
(Đưa ra 3-4 lời khuyên cụ thể để tối ưu hóa lợi nhuận và cắt giảm chi phí không cần thiết)

Giọng văn: Chuyên nghiệp, khách quan, sắc sảo.`,
		summary.TotalIncome, summary.TotalExpense, summary.NetProfit, cats.String(), list.String())
}

func BankAnalysisPrompt(description string, amount int64, flow core.BankFlow) string {
	return fmt.Sprintf(`Phân tích giao dịch ngân hàng sau: %q, Số tiền: %d, Loại: %s (CREDIT=Vào, DEBIT=Ra).
- Nếu là CREDIT (Tiền vào): Có thể là thanh toán từ khách hàng -> Gợi ý 'CREATE_INVOICE' hoặc 'CREATE_TRANSACTION' (Doanh thu).
- Nếu là DEBIT (Tiền ra): Là chi phí -> Gợi ý 'CREATE_TRANSACTION' và phân loại chi phí.
Trả về JSON theo mẫu: {"action": "CREATE_TRANSACTION"|"CREATE_INVOICE"|"IGNORE", "category": string, "explanation": string}.
%s`, description, amount, flow, jsonOnly)
}

func MatchPrompt(credits []core.BankTransaction, contracts []core.Contract) string {
	var bank strings.Builder
	for _, tx := range credits {
		fmt.Fprintf(&bank, "ID: %s, Desc: %q, Amount: %d\n", tx.ID, tx.Description, tx.Amount.VND)
	}
	var contractList strings.Builder
	for _, c := range contracts {
		fmt.Fprintf(&contractList, "ID: %s, Customer: %q, Value: %d, Invoiced: %d\n", c.ID, c.CustomerName, c.ContractValue, c.InvoicedAmount)
	}
	return fmt.Sprintf(`Dữ liệu Ngân hàng (Tiền về):
%s
Dữ liệu Hợp đồng:
%s
Nhiệm vụ: Hãy khớp lệnh (match) các giao dịch ngân hàng với hợp đồng tương ứng dựa trên Tên khách hàng, Số tiền, hoặc Nội dung chuyển khoản (có thể viết tắt, không dấu).
Trả về JSON là một mảng các phần tử theo mẫu: {"bankTxId": string, "contractId": string, "reason": string}.
Chỉ trả về các cặp khớp được; bỏ qua giao dịch không khớp hợp đồng nào. %s`,
		bank.String(), contractList.String(), jsonOnly)
}

func InvoiceExtractionPrompt() string {
	return fmt.Sprintf(`Trích xuất toàn bộ thông tin chi tiết từ hóa đơn này, bao gồm cả danh sách hàng hóa và thuế suất.
Trả về JSON theo mẫu: {"invoiceNumber": string, "date": "YYYY-MM-DD", "vendorName": string, "vendorTaxCode": string, "vendorAddress": string, "buyerName": string, "items": [{"description": string, "quantity": number, "unitPrice": number, "totalAmount": number}], "subTotal": number, "taxAmount": number, "taxRate": string, "totalAmount": number, "paymentMethod": string, "description": string, "category": string}.
Số tiền là VND nguyên, không dấu phân cách. %s`, jsonOnly)
}
