// Package browser exposes the browser Session as a catalog of tools.
//
// Every tool acquires the page through Sessions, so the first call after a
// crash or release transparently relaunches the browser. Diagnostic tools read
// the shared capture.Store and never touch the page.
//
// Tools:
//   - navigate, go_back, go_forward
//   - click, type, hover, scroll, select_option, fill_form, wait_for_selector
//   - get_element_text, get_element_attribute, get_page_content, execute_js
//   - take_screenshot, pdf_export, set_viewport
//   - get_console_logs, get_network
//   - get_cookies, set_cookies
//   - generate_page_report
package browser
